package web

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"

	"github.com/csheth/expertdesk/internal/answer"
	"github.com/csheth/expertdesk/internal/session"
	"github.com/csheth/expertdesk/internal/topic"
)

var markdown = goldmark.New()

// renderMarkdown turns a model answer into HTML. Raw HTML in the answer is
// dropped by goldmark's default renderer.
func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String())
}

type topicOption struct {
	Value   string
	Label   string
	Checked bool
}

type pageData struct {
	Title    string
	Sentinel string
	Topics   []topicOption
	View     session.View
	Stream   bool
	Client   string

	Error  string
	Detail string
	// Echo is set once a question reached the model.
	Echo   *echo
	Answer template.HTML
}

type echo struct {
	Topic    string `json:"topic"`
	Question string `json:"question"`
}

func newPageData(view session.View, mode answer.Mode, client string) pageData {
	options := make([]topicOption, 0, len(topic.All()))
	for _, t := range topic.All() {
		options = append(options, topicOption{Value: t.String(), Label: t.Label(), Checked: t == view.Topic})
	}
	return pageData{
		Title:    "Expert Desk",
		Sentinel: topic.SentinelLabel,
		Topics:   options,
		View:     view,
		Stream:   mode == answer.ModeStream,
		Client:   client,
	}
}

// withOutcome fills the output region from a finished submission.
func (p pageData) withOutcome(out answer.Outcome) pageData {
	switch out.Phase {
	case answer.PhaseSucceeded:
		p.Echo = &echo{Topic: out.Topic.Label(), Question: out.Question}
		p.Answer = renderMarkdown(out.Answer)
	case answer.PhaseRejected:
		p.Error = validationMessage(out.Err)
	default:
		p.Error = out.Message
		p.Detail = out.Detail
	}
	return p
}

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 46rem; margin: 2rem auto; padding: 0 1rem; }
.error { color: #b00020; font-weight: bold; }
.detail, .muted { color: #6b6b6b; }
.answer { border: 1px solid #f6a04d; border-radius: 8px; padding: 0 1rem; }
input[type=text] { width: 100%; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="muted">Ask a culinary researcher or an education advisor.</p>
<form id="desk" method="post" action="/ask">
  <fieldset>
    <legend>Which field is your question about?</legend>
    {{if not .View.Topic.Selected}}<p class="muted">{{.Sentinel}}</p>{{end}}
    {{range .Topics}}<label><input type="radio" name="topic" value="{{.Value}}"{{if .Checked}} checked{{end}} onchange="this.form.action='/topic'; this.form.submit()"> {{.Label}}</label><br>
    {{end}}
    <button type="submit" formaction="/topic">Choose</button>
  </fieldset>
  {{if .View.InputVisible}}
  <p>
    <input type="text" name="question" id="question" value="{{.View.Text}}" placeholder="{{.View.Placeholder}}" data-key="{{.View.InputKey}}">
  </p>
  <button type="submit" id="ask"{{if not .View.CanSubmit}} class="muted"{{end}}>Ask</button>
  {{end}}
</form>
<section id="output">
  {{if .Error}}<p class="error">{{.Error}}</p>{{end}}
  {{if .Detail}}<p class="detail">{{.Detail}}</p>{{end}}
  {{with .Echo}}<p class="muted">Topic: {{.Topic}}</p><p class="muted">Question: {{.Question}}</p>{{end}}
  {{if .Answer}}<div class="answer">{{.Answer}}</div>{{end}}
</section>
<p class="muted">{{.Client}}</p>
{{if .Stream}}
<script>
document.getElementById("desk").addEventListener("submit", async (ev) => {
  if (ev.submitter && ev.submitter.getAttribute("formaction") === "/topic") return;
  ev.preventDefault();
  const out = document.getElementById("output");
  const form = new URLSearchParams(new FormData(ev.target));
  const res = await fetch("/ask", { method: "POST", body: form, headers: { "Accept": "text/event-stream" } });
  const reader = res.body.getReader();
  const decoder = new TextDecoder();
  let buf = "";
  for (;;) {
    const { value, done } = await reader.read();
    if (done) break;
    buf += decoder.decode(value, { stream: true });
    let idx;
    while ((idx = buf.indexOf("\n\n")) >= 0) {
      const block = buf.slice(0, idx);
      buf = buf.slice(idx + 2);
      let event = "message", data = [];
      for (const line of block.split("\n")) {
        if (line.startsWith("event:")) event = line.slice(6);
        else if (line.startsWith("data:")) data.push(line.slice(5));
      }
      const text = data.join("\n");
      if (event === "echo") {
        const asked = JSON.parse(text);
        out.innerHTML = "";
        for (const line of ["Topic: " + asked.topic, "Question: " + asked.question]) {
          const p = document.createElement("p");
          p.className = "muted";
          p.textContent = line;
          out.appendChild(p);
        }
      } else if (event === "answer") {
        let box = out.querySelector(".answer");
        if (!box) {
          box = document.createElement("div");
          box.className = "answer";
          box.style.whiteSpace = "pre-wrap";
          out.appendChild(box);
        }
        box.textContent = text;
      } else if (event === "error") {
        out.innerHTML = "";
        const p = document.createElement("p");
        p.className = "error";
        p.textContent = text;
        out.appendChild(p);
      }
    }
  }
});
</script>
{{end}}
</body>
</html>
`))
