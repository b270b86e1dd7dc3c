package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	ghhtml "github.com/yuin/goldmark/renderer/html"
)

// markdown renders message bodies. Bot replies are routinely markdown.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		ghhtml.WithHardWraps(),
	),
)

// renderMarkdown converts markdown to HTML for embedding in templates.
// On render failure the raw text is escaped and wrapped in a paragraph.
func renderMarkdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(source) + "</p>")
	}
	return template.HTML(buf.String())
}

var templates = template.Must(template.New("fragments").Funcs(template.FuncMap{
	"markdown": renderMarkdown,
}).Parse(`
{{define "conversation_item"}}<li class="conversation-item" id="conversation-{{.ID}}">
  <a href="#" hx-get="/conversations/{{.ID}}" hx-target="#chat-window">{{if .Name}}{{.Name}}{{else}}New Chat{{end}}</a>
  <button class="delete" hx-delete="/conversations/{{.ID}}" hx-target="#conversation-{{.ID}}" hx-swap="outerHTML" hx-confirm="Delete this conversation?">&times;</button>
</li>{{end}}

{{define "message"}}<div class="message {{if eq .Sender "user"}}from-user{{else}}from-bot{{end}}">
  <div class="sender">{{.Sender}}</div>
  <div class="content">{{markdown .Content}}</div>
</div>{{end}}

{{define "message_pair"}}{{template "message" .UserMsg}}
{{template "message" .BotMsg}}{{end}}

{{define "chat_window"}}<div class="chat-header">
  <h2>{{if .Conversation.Name}}{{.Conversation.Name}}{{else}}New Chat{{end}}</h2>
</div>
<div class="messages" id="messages">
{{range .Messages}}{{template "message" .}}
{{end}}</div>
<form class="message-form" hx-post="/message" hx-target="#messages" hx-swap="beforeend">
  <input type="hidden" name="conversation_id" value="{{.Conversation.ID}}">
  <input type="text" name="content" placeholder="Type a message..." autocomplete="off" required>
  <button type="submit">Send</button>
</form>{{end}}

{{define "bot_item"}}<li class="bot-item" id="bot-{{.ID}}">
  <span class="bot-name">{{.Name}}</span>
  <span class="bot-role">{{.Role}}</span>
  <form class="bot-model-form" hx-put="/bots/{{.ID}}" hx-swap="none">
    <input type="text" name="model" value="{{.Model}}">
    <button type="submit">Update</button>
  </form>
</li>{{end}}

{{define "index"}}<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Multichat</title>
  <script src="https://unpkg.com/htmx.org@1.9.12"></script>
  <style>
    :root {
      color-scheme: dark;
    }
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
      margin: 0;
      background: #050b18;
      color: #e4ecff;
      display: grid;
      grid-template-columns: 280px 1fr 280px;
      height: 100vh;
    }
    aside {
      padding: 1rem;
      border-right: 1px solid rgba(148, 163, 184, 0.2);
      overflow-y: auto;
    }
    aside.bots {
      border-right: none;
      border-left: 1px solid rgba(148, 163, 184, 0.2);
    }
    main {
      display: flex;
      flex-direction: column;
      padding: 1rem 2rem;
      overflow-y: auto;
    }
    h1 {
      font-size: 1.2rem;
      color: #fff;
    }
    ul {
      list-style: none;
      padding: 0;
    }
    li {
      display: flex;
      align-items: center;
      gap: 0.5rem;
      padding: 0.4rem 0.6rem;
      border-radius: 8px;
    }
    li:hover {
      background: rgba(99, 102, 241, 0.18);
    }
    li a {
      color: #c7d2fe;
      text-decoration: none;
      flex: 1;
    }
    .message {
      margin: 0.5rem 0;
      padding: 0.6rem 1rem;
      border-radius: 12px;
      max-width: 75%;
    }
    .message.from-user {
      background: rgba(99, 102, 241, 0.3);
      margin-left: auto;
    }
    .message.from-bot {
      background: rgba(12, 19, 35, 0.85);
      border: 1px solid rgba(99, 102, 241, 0.2);
    }
    .sender {
      font-size: 0.75rem;
      color: #94a3b8;
      margin-bottom: 0.2rem;
    }
    form input[type=text] {
      background: #0f172a;
      border: 1px solid rgba(99, 102, 241, 0.3);
      border-radius: 8px;
      color: #e4ecff;
      padding: 0.5rem;
    }
    form button {
      background: rgba(99, 102, 241, 0.6);
      border: none;
      border-radius: 8px;
      color: #fff;
      padding: 0.5rem 1rem;
      cursor: pointer;
    }
    .message-form {
      display: flex;
      gap: 0.5rem;
      margin-top: auto;
    }
    .message-form input {
      flex: 1;
    }
    button.delete {
      background: none;
      color: #94a3b8;
      padding: 0 0.4rem;
    }
    .bot-role {
      font-size: 0.75rem;
      color: #94a3b8;
    }
  </style>
</head>
<body>
  <aside>
    <h1>Conversations</h1>
    <form hx-post="/conversations" hx-target="#conversation-list" hx-swap="afterbegin">
      <input type="text" name="name" placeholder="New Chat">
      <button type="submit">+</button>
    </form>
    <ul id="conversation-list">
{{range .Conversations}}{{template "conversation_item" .}}
{{end}}    </ul>
  </aside>
  <main id="chat-window">
    <p>Select a conversation to start chatting.</p>
  </main>
  <aside class="bots">
    <h1>Bots</h1>
    <ul id="bot-list">
{{range .Bots}}{{template "bot_item" .}}
{{end}}    </ul>
    <form hx-post="/bots" hx-target="#bot-list" hx-swap="beforeend">
      <input type="text" name="name" placeholder="Name" required>
      <input type="text" name="role" placeholder="Role" required>
      <input type="text" name="system_prompt" placeholder="System prompt" required>
      <input type="text" name="model" placeholder="Model">
      <button type="submit">Add bot</button>
    </form>
  </aside>
</body>
</html>{{end}}
`))

// renderFragment executes a named template into the response.
func renderFragment(w http.ResponseWriter, name string, data any) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}
