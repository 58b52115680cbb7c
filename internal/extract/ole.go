package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/richardlehane/mscfb"
	"github.com/richardlehane/msoleps"
)

// oleSummary holds the SummaryInformation properties we care about from a
// legacy .doc compound file.
type oleSummary struct {
	Title    string
	Author   string
	Subject  string
	Created  string
	Modified string
}

// readOLESummary walks the OLE2 streams of a .doc file and pulls the
// standard SummaryInformation property set.
func readOLESummary(path string) (oleSummary, error) {
	var out oleSummary

	f, err := os.Open(path)
	if err != nil {
		return out, fmt.Errorf("open doc %s: %w", path, err)
	}
	defer f.Close()

	doc, err := mscfb.New(f)
	if err != nil {
		return out, fmt.Errorf("parse ole2 %s: %w", path, err)
	}

	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if !msoleps.IsMSOLEPS(entry.Initial) {
			continue
		}
		props := msoleps.New()
		if err := props.Reset(doc); err != nil {
			continue
		}
		for _, p := range props.Property {
			switch normalizePropName(p.Name) {
			case "title":
				out.Title = p.String()
			case "author":
				out.Author = p.String()
			case "subject":
				out.Subject = p.String()
			case "createtimedate":
				out.Created = p.String()
			case "lastsavedtimedate":
				out.Modified = p.String()
			}
		}
	}
	return out, nil
}

func normalizePropName(name string) string {
	name = strings.ToLower(name)
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		return -1
	}, name)
}
