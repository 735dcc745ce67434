package resources

import "embed"

//go:embed towers/*.json
var TowerFiles embed.FS

//go:embed maps/*.yaml
var MapFiles embed.FS

//go:embed global.yaml
var GlobalConfig []byte
