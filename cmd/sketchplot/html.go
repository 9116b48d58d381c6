// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"

	"github.com/google/safehtml/template"
	"github.com/sketchbench/sketchperf/sketchchart"
	"github.com/sketchbench/sketchperf/sketchproc"
)

const htmlText = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Sketch Benchmark Results</title>
<style>
.sketchplot { border-collapse: collapse; margin-bottom: 2em; }
.sketchplot th { text-align: left; border-bottom: 1px solid #666; }
.sketchplot td:nth-child(1n+3) { text-align: right; padding: 0em 1em; }
</style>
</head>
<body>
<p>Allow list: {{.Selector}}{{if .Members}} ({{range $i, $m := .Members}}{{if $i}}, {{end}}{{$m}}{{end}}){{else}} (all data structures){{end}}</p>
{{- range .Groups}}
<h2>{{.Trace}} {{.Metric}}{{if eq .Metric "Throughput"}} {{.Operation}}{{end}}</h2>
<table class='sketchplot'>
<tr><th>data structure<th>label<th>{{ylabel .Metric}}<th>stddev<th>n
{{range .Bars -}}
<tr><td>{{.Name}}<td>{{short .Name}}<td>{{printf "%.6g" .Summary.Mean}}<td>{{printf "%.6g" .Summary.StdDev}}<td>{{.Summary.N}}
{{end -}}
</table>
{{- end}}
</body>
</html>
`

var htmlTemplate = template.Must(template.New("").Funcs(template.FuncMap{
	"short":  sketchchart.ShortName,
	"ylabel": sketchchart.YLabel,
}).Parse(htmlText))

type htmlData struct {
	Selector string
	Members  []string
	Groups   []*sketchproc.Group
}

// formatHTML appends an HTML report of groups to buf.
func formatHTML(buf *bytes.Buffer, selector string, allow *sketchproc.AllowList, groups []*sketchproc.Group) {
	err := htmlTemplate.Execute(buf, htmlData{selector, allow.Names(), groups})
	if err != nil {
		// Only possible errors here are template not matching data structure.
		// Don't make caller check - it's our fault.
		panic(err)
	}
}

func writeHTMLFile(path, selector string, allow *sketchproc.AllowList, groups []*sketchproc.Group) error {
	var buf bytes.Buffer
	formatHTML(&buf, selector, allow, groups)
	return os.WriteFile(path, buf.Bytes(), 0666)
}
