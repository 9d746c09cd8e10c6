package httpcontroller

import "embed"

// The dashboard templates and static assets ship inside the binary so a
// deployment is a single file plus its CSV dataset.

//go:embed views
var ViewsFs embed.FS

//go:embed assets
var AssetsFs embed.FS
