package splitter

import (
	"fmt"
	"path/filepath"
	"strings"
)

// OutputPath builds the file name for chunk number num: the input's base
// name with a zero-padded _partNN suffix before the original extension,
// placed in outputDir. Numbers past 99 widen the field rather than wrap.
func OutputPath(inputPath, outputDir string, num int) string {
	base := filepath.Base(inputPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(outputDir, fmt.Sprintf("%s_part%02d%s", stem, num, ext))
}

// ResolveOutputDir returns outputDir unchanged when set; otherwise it
// falls back to the input file's own directory.
func ResolveOutputDir(inputPath, outputDir string) string {
	if outputDir != "" {
		return outputDir
	}
	return filepath.Dir(inputPath)
}
