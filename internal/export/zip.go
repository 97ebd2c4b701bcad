// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"archive/zip"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/meshintel/labhal/pkg/types"
)

// maxFilenameLen caps the title-derived part of a ZIP entry name.
const maxFilenameLen = 60

var unsafeFilenameChars = regexp.MustCompile(`[\\/:"*?<>|]+`)

// WriteZIP bundles one TEI XML file per row into a ZIP archive. A row
// whose XML fails to render is reported to warnings and skipped; the
// rest of the archive is still produced. Duplicate title-derived names
// get a numeric suffix so no entry overwrites another.
func WriteZIP(w io.Writer, rows []types.Row, warnings io.Writer) error {
	zw := zip.NewWriter(w)
	used := make(map[string]int)

	for _, row := range rows {
		data, err := TEIXML(row)
		if err != nil {
			fmt.Fprintf(warnings, "warning: skipping XML for %q: %v\n", row.Title, err)
			continue
		}

		name := safeFilename(row.Title)
		if n := used[name]; n > 0 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		used[safeFilename(row.Title)]++

		entry, err := zw.Create(name + ".xml")
		if err != nil {
			zw.Close()
			return fmt.Errorf("creating zip entry %q: %w", name, err)
		}
		if _, err := entry.Write(data); err != nil {
			zw.Close()
			return fmt.Errorf("writing zip entry %q: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing zip: %w", err)
	}
	return nil
}

// safeFilename turns a title into a portable filename: filesystem
// metacharacters collapse to underscores and the result is truncated.
func safeFilename(title string) string {
	name := unsafeFilenameChars.ReplaceAllString(title, "_")
	name = strings.TrimSpace(name)
	if len(name) > maxFilenameLen {
		name = strings.TrimRight(name[:maxFilenameLen], " ")
	}
	if name == "" {
		return "untitled"
	}
	return name
}
