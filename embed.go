package pubsite

import "embed"

// EmbeddedAssets contains files copied into every built site before the
// user's static directory, which may override them: favicon.svg, style.css.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
