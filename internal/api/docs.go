package api

// docsHTML renders the OpenAPI document with a header linking the live
// event docs.
const docsHTML = `<!doctype html>
<html lang="en" data-theme="dark">
<head>
  <meta charset="utf-8" />
  <meta name="referrer" content="same-origin" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Compass Chart API</title>
  <link href="https://unpkg.com/@stoplight/elements@9.0.0/styles.min.css" rel="stylesheet" />
  <script src="https://unpkg.com/@stoplight/elements@9.0.0/web-components.min.js" crossorigin="anonymous"></script>
  <style>
    body { display: flex; flex-direction: column; height: 100vh; margin: 0; background: #0d1117; }
    header {
      display: flex;
      align-items: center;
      gap: 16px;
      padding: 8px 16px;
      border-bottom: 1px solid #30363d;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
      font-size: 13px;
      color: #c9d1d9;
    }
    header strong { flex: 1; }
    header a { color: #58a6ff; text-decoration: none; }
    elements-api { flex: 1; min-height: 0; }
  </style>
</head>
<body>
  <header>
    <strong>Compass Chart</strong>
    <a href="/docs/events">Live events</a>
    <a href="/openapi.yaml">OpenAPI (YAML)</a>
    <a href="/health">Health</a>
  </header>
  <elements-api
    apiDescriptionUrl="/openapi.json"
    router="hash"
    layout="sidebar"
    tryItCredentialsPolicy="same-origin"
    darkMode
  />
</body>
</html>`

const eventsDocsHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Live Events · Compass Chart</title>
  <style>
    body {
      margin: 0 auto;
      max-width: 760px;
      padding: 24px;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
      font-size: 14px;
      line-height: 1.65;
      background: #0d1117;
      color: #c9d1d9;
    }
    a { color: #58a6ff; text-decoration: none; }
    code, pre { background: #161b22; border: 1px solid #30363d; border-radius: 6px; }
    code { padding: 1px 5px; }
    pre { padding: 12px; overflow-x: auto; }
    table { border-collapse: collapse; width: 100%; }
    td, th { border-bottom: 1px solid #30363d; padding: 6px 8px; text-align: left; }
  </style>
</head>
<body>
  <p><a href="/docs">← REST API</a></p>
  <h1>Live events</h1>
  <p>Every chart operation publishes the resulting session state. Two transports carry the same events:</p>
  <table>
    <tr><th>Transport</th><th>Endpoint</th></tr>
    <tr><td>Server-Sent Events</td><td><code>GET /api/v1/events</code></td></tr>
    <tr><td>WebSocket (JSON text frames)</td><td><code>GET /api/v1/ws</code></td></tr>
  </table>
  <p>Filter feeds with <code>?feeds=state,pointer</code>.</p>
  <h2>Feeds</h2>
  <table>
    <tr><th>Feed</th><th>Payload</th></tr>
    <tr><td><code>state</code></td><td><code>{"op": "...", "state": {...}}</code> after every operation</td></tr>
    <tr><td><code>pointer</code></td><td>the preview point after a pointer move</td></tr>
  </table>
  <h2>Frame</h2>
<pre>{
  "id": "4f0c2a9e-...",
  "feed": "state",
  "at": "2026-01-02T15:04:05Z",
  "payload": {"op": "create_chart", "state": {"charts": ["A"], "loaded_chart": "A"}}
}</pre>
  <p>Slow subscribers have events dropped rather than blocking the chart.</p>
</body>
</html>`
