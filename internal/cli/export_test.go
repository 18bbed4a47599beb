package cli

import "github.com/spf13/cobra"

var (
	RankProfiles = rankProfiles
	ErrorHint    = errorHint
	IsUsageError = isUsageError
	WatchFiles   = watchFiles
)

func NewDetectCmdWithPicker(rootArgs *RootArgs, p Picker) *cobra.Command {
	da := NewDetectArgs(rootArgs)
	da.picker = p

	return newDetectCmd(da)
}
