package health

import (
	"fmt"
	"html/template"
	"sort"
	"strings"
)

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Air Rights Ledger · API Status</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <meta http-equiv="refresh" content="15">
  <style>
    body { font-family: system-ui, sans-serif; background: #f5f7f8; color: #1d2b2a; margin: 0; padding: 40px; }
    h1 { margin: 0 0 8px; font-size: 40px; letter-spacing: -1px; }
    h1.issue { color: #c0392b; }
    .sub { color: #64748b; font-weight: 600; margin-bottom: 28px; }
    .grid { display: grid; grid-template-columns: repeat(3, 1fr); gap: 20px; }
    .card { background: #fff; border-radius: 16px; padding: 24px; box-shadow: 0 8px 30px rgba(0,0,0,0.05); }
    .label { text-transform: uppercase; font-size: 11px; letter-spacing: 2px; color: #94a3b8; font-weight: 800; margin-bottom: 12px; }
    .row { display: flex; justify-content: space-between; padding: 6px 0; font-weight: 600; }
    .ok { color: #0f766e; } .err { color: #c0392b; }
    footer { margin-top: 24px; font-family: monospace; color: #64748b; }
    @media (max-width: 900px) { .grid { grid-template-columns: 1fr; } }
  </style>
</head>
<body>
  <h1 class="{{.Status}}">{{if eq .Status "ok"}}All Systems Operational{{else}}System Issues Detected{{end}}</h1>
  <div class="sub">Ledger API performance and dependencies. <a href="/health/errors">Error log</a></div>
  <div class="grid">
    <div class="card">
      <div class="label">Traffic</div>
      <div class="row"><span>Requests</span><span>{{.Traffic.TotalRequests}}</span></div>
      <div class="row"><span>Successful</span><span class="ok">{{.Traffic.SuccessCount}}</span></div>
      <div class="row"><span>Failed</span><span class="err">{{.Traffic.FailedCount}}</span></div>
      <div class="row"><span>Success rate</span><span>{{.Traffic.SuccessRate}}%</span></div>
      <div class="row"><span>Avg latency</span><span>{{.AvgLatency}}ms</span></div>
    </div>
    <div class="card">
      <div class="label">Runtime</div>
      <div class="row"><span>Uptime</span><span>{{.Uptime}}</span></div>
      <div class="row"><span>Heap used</span><span>{{.Runtime.Memory.HeapUsed}} MB</span></div>
      <div class="row"><span>Goroutines</span><span>{{.Runtime.Goroutines}}</span></div>
      <div class="row"><span>Platform</span><span>{{.Runtime.Platform}}</span></div>
      <div class="row"><span>Go</span><span>{{.Runtime.GoVersion}}</span></div>
    </div>
    <div class="card">
      <div class="label">Connectivity</div>
      {{range .Deps}}<div class="row"><span>{{.Name}}</span><span class="{{.Class}}">{{.Status}} {{.Ping}}</span></div>
      {{end}}
    </div>
  </div>
  <footer>last inbound: {{.LastRequest}}</footer>
</body>
</html>
`))

type dashboardDep struct {
	Name, Status, Class, Ping string
}

type dashboardView struct {
	CollectResult
	AvgLatency  string
	Uptime      string
	LastRequest string
	Deps        []dashboardDep
}

// RenderDashboardHTML returns the status page served at GET /.
func RenderDashboardHTML(health CollectResult) string {
	view := dashboardView{
		CollectResult: health,
		AvgLatency:    fmt.Sprint(health.Traffic.AvgResponseTime),
		Uptime:        formatUptime(health.Runtime.UptimeSeconds),
		LastRequest:   "-",
	}
	if m, ok := health.Traffic.LastRequest.(map[string]interface{}); ok {
		view.LastRequest = fmt.Sprintf("%v %v from %v", m["method"], m["path"], m["ip"])
	}

	names := make([]string, 0, len(health.Dependencies))
	for name := range health.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		d := health.Dependencies[name]
		dep := dashboardDep{Name: name, Status: d.Status, Class: "err"}
		if d.Status == "connected" {
			dep.Class = "ok"
		}
		if d.Driver != "" {
			dep.Name = name + " (" + d.Driver + ")"
		}
		if ms, ok := d.PingMs.(*int64); ok && ms != nil {
			dep.Ping = fmt.Sprintf("%d ms", *ms)
		}
		view.Deps = append(view.Deps, dep)
	}

	var b strings.Builder
	if err := dashboardTmpl.Execute(&b, view); err != nil {
		return "<pre>" + template.HTMLEscapeString(err.Error()) + "</pre>"
	}
	return b.String()
}

func formatUptime(s int64) string {
	d, h, m, sec := s/86400, (s%86400)/3600, (s%3600)/60, s%60
	if d > 0 {
		return fmt.Sprintf("%dd %dh %dm", d, h, m)
	}
	return fmt.Sprintf("%dh %dm %ds", h, m, sec)
}
