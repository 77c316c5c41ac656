// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/sos-convert/pkg/types"
)

// envKeyReplacer maps nested keys to environment names, so script.host_kernel
// is read from SOS_CONVERT_SCRIPT_HOST_KERNEL.
var envKeyReplacer = strings.NewReplacer(".", "_")

// setDefaults registers every configuration key with its default value.
// AutomaticEnv only sees keys viper already knows about.
func setDefaults(v *viper.Viper, d types.ConvertConfig) {
	v.SetDefault("script.format_tag", d.Script.FormatTag)
	v.SetDefault("script.format_version", d.Script.FormatVersion)
	v.SetDefault("script.shebang", d.Script.Shebang)
	v.SetDefault("script.host_kernel", d.Script.HostKernel)
	v.SetDefault("markup.language", d.Markup.Language)
	v.SetDefault("markup.kernel", d.Markup.Kernel)
	v.SetDefault("markup.keep_heading_marker", d.Markup.KeepHeadingMarker)
	v.SetDefault("notebook.cell_ids", d.Notebook.CellIDs)
	v.SetDefault("ledger.dir", d.Ledger.Dir)
	v.SetDefault("ledger.max_results", d.Ledger.MaxResults)
	v.SetDefault("export_all", d.ExportAll)
	v.SetDefault("log_level", d.LogLevel)
}
