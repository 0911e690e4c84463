package httpapi

import (
	"embed"
	"html/template"
	"io/fs"

	"pkt.systems/termfolio/internal/markdown"
)

//go:embed assets/*
var embeddedAssets embed.FS

var assetsFS fs.FS

var pageTemplate = template.Must(template.New("index.html.tmpl").
	Funcs(template.FuncMap{"inline": markdown.HTML}).
	ParseFS(embeddedAssets, "assets/index.html.tmpl"))

func init() {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		assetsFS = embeddedAssets
		return
	}
	assetsFS = sub
}
