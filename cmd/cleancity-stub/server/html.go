package server

import "html/template"

// pages holds every page of the stub. Page behavior is plain inline
// JavaScript so that the suite sees the same kind of client-side validation
// and storage handling as the deployed single-page application.
var pages = template.Must(template.New("pages").Parse(layoutHTML + loginHTML + registerHTML + dashboardHTML + pickupHTML + feedbackHTML + adminHTML))

const layoutHTML = `
{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{.Title}} - Clean City</title>
    <style>
        * { box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            margin: 0;
            background: #f5f5f5;
            color: #222;
        }
        header {
            display: flex;
            flex-wrap: wrap;
            justify-content: space-between;
            align-items: center;
            gap: 8px;
            padding: 12px 16px;
            background: #2e7d32;
            color: white;
        }
        header button { margin: 0; background: white; color: #2e7d32; }
        main { max-width: 960px; margin: 0 auto; padding: 16px; }
        .card {
            background: white;
            padding: 20px;
            border-radius: 8px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }
        label { display: block; margin-top: 12px; font-weight: 600; }
        input, select, textarea { width: 100%; padding: 8px; margin-top: 4px; font-size: 16px; }
        button {
            background: #2e7d32;
            color: white;
            border: none;
            padding: 10px 20px;
            border-radius: 4px;
            cursor: pointer;
            font-size: 16px;
            margin-top: 16px;
        }
        .error-message { color: #c62828; margin: 4px 0; }
        .success-message { color: #2e7d32; font-weight: 600; }
{{if .Bugs.Has "table-overflow"}}
        .request-table { min-width: 760px; border-collapse: collapse; }
        .request-table th, .request-table td { padding: 6px 12px; white-space: nowrap; text-align: left; }
{{else}}
        .request-table { width: 100%; border-collapse: collapse; table-layout: fixed; }
        .request-table th, .request-table td {
            padding: 6px;
            border-bottom: 1px solid #ddd;
            overflow-wrap: anywhere;
            text-align: left;
            font-size: 14px;
        }
{{end}}
    </style>
    <script>
        const BUGS = {{.Bugs}};
        function bug(id) { return BUGS[id] === true; }
        function val(id) { return document.getElementById(id).value.trim(); }
        function clearErrors(form) {
            form.querySelectorAll('.error-message').forEach((el) => el.remove());
        }
        function showError(form, text) {
            const p = document.createElement('p');
            p.className = 'error-message';
            p.textContent = text;
            form.querySelector('.errors').append(p);
        }
        function randomToken() {
            return Array.from(crypto.getRandomValues(new Uint8Array(16)), (b) => b.toString(16).padStart(2, '0')).join('');
        }
        // FNV-1a; the stub never verifies passwords, it only must not keep them.
        function digest(text) {
            let h = 0x811c9dc5;
            for (let i = 0; i < text.length; i++) {
                h ^= text.charCodeAt(i);
                h = Math.imul(h, 0x01000193) >>> 0;
            }
            return h.toString(16).padStart(8, '0');
        }
        function currentUser() {
            try { return JSON.parse(localStorage.getItem('currentUser') || 'null'); } catch (e) { return null; }
        }
        function requireLogin() {
            if (!localStorage.getItem('authToken')) {
                location.replace('/login');
                return false;
            }
            return true;
        }
    </script>
</head>
<body>
{{end}}

{{define "foot"}}
</body>
</html>
{{end}}
`

const loginHTML = `
{{define "login"}}{{template "head" .}}
<main>
<section class="card">
    <h1>Log in</h1>
    <form id="login-form" novalidate>
        <div class="errors"></div>
        <label for="email">Email</label>
        <input id="email" type="email" autocomplete="username">
        <label for="password">Password</label>
        <input id="password" type="password" autocomplete="current-password">
        <button type="submit">Log in</button>
    </form>
    <p>No account? <a href="/register">Create one</a></p>
</section>
</main>
<script>
    const form = document.getElementById('login-form');
    form.addEventListener('submit', (e) => {
        e.preventDefault();
        clearErrors(form);
        const email = val('email');
        const password = document.getElementById('password').value;
        if (!email || !password) {
            if (!bug('silent-login')) {
                showError(form, 'Email and password are required');
            }
            return;
        }
        const role = email.startsWith('admin@') ? 'admin' : 'resident';
        localStorage.setItem('authToken', randomToken());
        localStorage.setItem('currentUser', JSON.stringify({ email: email, role: role }));
        sessionStorage.setItem('sessionId', randomToken());
        document.cookie = 'cc_role=' + role + '; path=/; SameSite=Lax';
        location.href = '/dashboard';
    });
</script>
{{template "foot" .}}{{end}}
`

const registerHTML = `
{{define "register"}}{{template "head" .}}
<main>
<section class="card">
    <h1>Create account</h1>
    <form id="register-form" novalidate>
        <div class="errors"></div>
        <label for="name">Full name</label>
        <input id="name" type="text" autocomplete="name">
        <label for="email">Email</label>
        <input id="email" type="email" autocomplete="email">
        <label for="password">Password</label>
        <input id="password" type="password" autocomplete="new-password">
        <button type="submit">Register</button>
    </form>
</section>
</main>
<script>
    const form = document.getElementById('register-form');
    form.addEventListener('submit', (e) => {
        e.preventDefault();
        clearErrors(form);
        const name = val('name');
        const email = val('email');
        const password = document.getElementById('password').value;
        if (!name || !email || !password) {
            showError(form, 'All fields are required');
            return;
        }
        if (name.length < 2 && !bug('short-name')) {
            showError(form, 'Name must be at least 2 characters');
            return;
        }
        const users = JSON.parse(localStorage.getItem('registeredUsers') || '[]');
        const record = { name: name, email: email };
        if (bug('plaintext-password')) {
            record.password = password;
        } else {
            record.passwordDigest = digest(password);
        }
        users.push(record);
        localStorage.setItem('registeredUsers', JSON.stringify(users));
        location.href = '/login';
    });
</script>
{{template "foot" .}}{{end}}
`

const dashboardHTML = `
{{define "dashboard"}}{{template "head" .}}
<header>
    <strong>Clean City</strong>
    <div id="user-menu">
        <span id="user-email"></span>
        <button id="logout-button" type="button">Logout</button>
    </div>
</header>
<main>
<section class="card">
    <h1>Pickup requests</h1>
    <label for="location-filter">Location</label>
    <select id="location-filter">
        <option value="">All locations</option>
        {{range .Cities}}<option value="{{.}}">{{.}}</option>
        {{end}}
    </select>
    <table class="request-table">
        <thead>
            <tr><th>ID</th><th>Resident</th><th>Location</th><th>Date</th><th>Status</th></tr>
        </thead>
        <tbody id="request-rows"></tbody>
    </table>
</section>
</main>
<script>
    const REQUESTS = {{.Requests}};

    function renderRows(city) {
        let shown = city;
        if (bug('eldoret-filter') && city === 'Eldoret') {
            shown = 'Nairobi';
        }
        const rows = REQUESTS.filter((r) => !shown || r.city === shown).map((r) => {
            const tr = document.createElement('tr');
            [r.id, r.resident, r.area + ', ' + r.city, r.date, r.status].forEach((text, i) => {
                const td = document.createElement('td');
                td.textContent = text;
                if (i === 2) {
                    td.className = 'request-location';
                }
                tr.append(td);
            });
            return tr;
        });
        document.getElementById('request-rows').replaceChildren(...rows);
    }

    if (requireLogin()) {
        const user = currentUser();
        document.getElementById('user-email').textContent = user ? user.email : '';
        renderRows('');
        document.getElementById('location-filter').addEventListener('change', (e) => renderRows(e.target.value));
        document.getElementById('logout-button').addEventListener('click', () => {
            if (bug('stale-session')) {
                localStorage.removeItem('authToken');
            } else {
                localStorage.clear();
                sessionStorage.clear();
                document.cookie = 'cc_role=; Max-Age=0; path=/';
            }
            location.href = '/login';
        });
    }
</script>
{{template "foot" .}}{{end}}
`

const pickupHTML = `
{{define "pickup"}}{{template "head" .}}
<main>
<section class="card">
    <h1>Request a pickup</h1>
    <form id="pickup-form" novalidate>
        <div class="errors"></div>
        <label for="name">Name</label>
        <input id="name" type="text">
        <label for="phone">Phone</label>
        <input id="phone" type="tel">
        <label for="address">Address</label>
        <input id="address" type="text">
        <label for="location">Location</label>
        <input id="location" type="text">
        <label for="preferred-date">Preferred date</label>
        <input id="preferred-date" type="date">
        <button type="submit">Submit request</button>
    </form>
</section>
</main>
<script>
    if (requireLogin()) {
        const form = document.getElementById('pickup-form');
        form.addEventListener('submit', (e) => {
            e.preventDefault();
            clearErrors(form);
            const errors = [];
            if (!val('name')) {
                errors.push('Name is required');
            }
            if (!val('location')) {
                errors.push('Location is required');
            }
            if (!val('preferred-date') && !bug('date-unvalidated')) {
                errors.push('Preferred date is required');
            }
            if (errors.length > 0) {
                errors.forEach((text) => showError(form, text));
                if (bug('form-reset')) {
                    form.reset();
                }
                return;
            }
            location.href = '/dashboard';
        });
    }
</script>
{{template "foot" .}}{{end}}
`

const feedbackHTML = `
{{define "feedback"}}{{template "head" .}}
<main>
<section class="card">
    <h1>Pickup feedback</h1>
    <form id="feedback-form" novalidate>
        <div class="errors"></div>
        <label for="request-id">Request ID</label>
        <input id="request-id" type="text">
        <label for="reason">Reason</label>
        <select id="reason">
            <option value="">Select a reason</option>
            {{range .Reasons}}<option value="{{.}}">{{.}}</option>
            {{end}}
        </select>
        <label for="comments">Comments</label>
        <textarea id="comments" rows="4"></textarea>
        <button type="submit">Send feedback</button>
    </form>
    <div id="feedback-result"></div>
</section>
</main>
<script>
    if (requireLogin()) {
        const form = document.getElementById('feedback-form');
        form.addEventListener('submit', (e) => {
            e.preventDefault();
            clearErrors(form);
            const errors = [];
            if (!val('request-id')) {
                errors.push('Request ID is required');
            }
            if (!val('reason')) {
                errors.push('Please select a reason');
            }
            if (!val('comments') && !bug('empty-comments')) {
                errors.push('Comments are required');
            }
            if (errors.length > 0) {
                errors.forEach((text) => showError(form, text));
                return;
            }
            const done = document.createElement('p');
            done.className = 'success-message';
            done.textContent = 'Thank you! Your feedback has been recorded.';
            document.getElementById('feedback-result').replaceChildren(done);
            form.reset();
        });
    }
</script>
{{template "foot" .}}{{end}}
`

const adminHTML = `
{{define "admin"}}{{template "head" .}}
<main>
<section class="card">
{{if .Denied}}
    <h1>Access denied</h1>
    <p>You need an administrator account to view this page.</p>
    <a href="/dashboard">Back to dashboard</a>
{{else}}
    <h1>Administration</h1>
    <div class="admin-controls">
        <button type="button">Approve pending requests</button>
        <button type="button">Export requests</button>
        <button type="button">Manage users</button>
    </div>
{{end}}
</section>
</main>
{{template "foot" .}}{{end}}
`
