package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// docxCoreProps mirrors docProps/core.xml. Field matching is by local name,
// so the dc/dcterms namespaces are irrelevant.
type docxCoreProps struct {
	Title       string `xml:"title"`
	Creator     string `xml:"creator"`
	Created     string `xml:"created"`
	Modified    string `xml:"modified"`
	Description string `xml:"description"`
}

func readDocxCoreProps(path string) (docxCoreProps, error) {
	var props docxCoreProps
	zr, err := zip.OpenReader(path)
	if err != nil {
		return props, fmt.Errorf("open docx %s: %w", path, err)
	}
	defer zr.Close()

	f := findZipEntry(&zr.Reader, "docProps/core.xml")
	if f == nil {
		return props, nil
	}
	rc, err := f.Open()
	if err != nil {
		return props, err
	}
	defer rc.Close()

	if err := xml.NewDecoder(rc).Decode(&props); err != nil {
		return props, fmt.Errorf("decode core.xml: %w", err)
	}
	return props, nil
}

// readDocxText extracts paragraph text from word/document.xml, one line per
// paragraph, and reports whether the archive embeds images.
func readDocxText(path string) (string, bool, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", false, fmt.Errorf("open docx %s: %w", path, err)
	}
	defer zr.Close()

	doc := findZipEntry(&zr.Reader, "word/document.xml")
	if doc == nil {
		return "", false, fmt.Errorf("docx %s has no word/document.xml", path)
	}
	rc, err := doc.Open()
	if err != nil {
		return "", false, err
	}
	defer rc.Close()

	text, err := decodeDocumentXML(rc)
	if err != nil {
		return "", false, err
	}
	return text, len(docxMediaEntries(&zr.Reader)) > 0, nil
}

func decodeDocumentXML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	var inText bool
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}

// docxMediaEntries lists embedded images under word/media/.
func docxMediaEntries(zr *zip.Reader) []*zip.File {
	var out []*zip.File
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, "word/media/") {
			continue
		}
		lower := strings.ToLower(f.Name)
		if strings.HasSuffix(lower, ".png") || strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg") {
			out = append(out, f)
		}
	}
	return out
}

func findZipEntry(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}
