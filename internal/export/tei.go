// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/meshintel/labhal/pkg/types"
)

// TEI structures in the aofr-sword shape the repository's SWORD import
// expects. Attribute names carry literal prefixes on purpose: the
// importer matches them verbatim.
type teiDocument struct {
	XMLName        xml.Name `xml:"TEI"`
	NS             string   `xml:"xmlns,attr"`
	NSHal          string   `xml:"xmlns:hal,attr"`
	NSXSI          string   `xml:"xmlns:xsi,attr"`
	SchemaLocation string   `xml:"xsi:schemaLocation,attr"`
	Text           teiText  `xml:"text"`
}

type teiText struct {
	Body teiBody `xml:"body"`
}

type teiBody struct {
	ListBibl teiListBibl `xml:"listBibl"`
}

type teiListBibl struct {
	BiblFull teiBiblFull `xml:"biblFull"`
}

type teiBiblFull struct {
	TitleStmt  struct{}      `xml:"titleStmt"`
	SeriesStmt struct{}      `xml:"seriesStmt"`
	NotesStmt  teiNotesStmt  `xml:"notesStmt"`
	SourceDesc teiSourceDesc `xml:"sourceDesc"`
}

type teiNotesStmt struct {
	Note teiNote `xml:"note"`
}

type teiNote struct {
	Type  string `xml:"type,attr"`
	N     string `xml:"n,attr"`
	Value string `xml:",chardata"`
}

type teiSourceDesc struct {
	BiblStruct teiBiblStruct `xml:"biblStruct"`
}

type teiBiblStruct struct {
	Analytic teiAnalytic `xml:"analytic"`
	Monogr   teiMonogr   `xml:"monogr"`
	DOI      *teiIdno    `xml:"idno,omitempty"`
}

type teiAnalytic struct {
	Title   teiTitle    `xml:"title"`
	Authors []teiAuthor `xml:"author"`
}

type teiTitle struct {
	Lang  string `xml:"xml:lang,attr,omitempty"`
	Level string `xml:"level,attr,omitempty"`
	Value string `xml:",chardata"`
}

type teiAuthor struct {
	Role     string      `xml:"role,attr"`
	PersName teiPersName `xml:"persName"`
}

type teiPersName struct {
	Forename *teiForename `xml:"forename,omitempty"`
	Surname  string       `xml:"surname"`
}

type teiForename struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type teiMonogr struct {
	Title   teiTitle   `xml:"title"`
	Imprint teiImprint `xml:"imprint"`
}

type teiImprint struct {
	Publisher string  `xml:"publisher"`
	Date      teiDate `xml:"date"`
}

type teiDate struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type teiIdno struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

// TEIXML renders one publication as a repository-importable TEI
// document, XML declaration included.
func TEIXML(row types.Row) ([]byte, error) {
	doc := teiDocument{
		NS:             "http://www.tei-c.org/ns/1.0",
		NSHal:          "http://hal.archives-ouvertes.fr/",
		NSXSI:          "http://www.w3.org/2001/XMLSchema-instance",
		SchemaLocation: "http://www.tei-c.org/ns/1.0 http://api.archives-ouvertes.fr/documents/aofr-sword.xsd",
	}

	bibl := &doc.Text.Body.ListBibl.BiblFull
	bibl.NotesStmt.Note = teiNote{Type: "peer", N: "1", Value: "Yes"}

	bs := &bibl.SourceDesc.BiblStruct
	bs.Analytic.Title = teiTitle{Lang: "en", Value: row.Title}
	for _, name := range row.Authors {
		bs.Analytic.Authors = append(bs.Analytic.Authors, teiAuthorFromName(name))
	}

	bs.Monogr.Title = teiTitle{Level: "j", Value: row.VenueTitle}
	bs.Monogr.Imprint = teiImprint{
		Publisher: row.OpenAccess.Publisher,
		Date:      teiDate{Type: "datePub", Value: row.PublicationDate},
	}

	if row.HasDOI() {
		bs.DOI = &teiIdno{Type: "doi", Value: types.CleanDOI(row.DOI)}
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling TEI for %q: %w", row.Title, err)
	}
	return append([]byte(xml.Header), out...), nil
}

// teiAuthorFromName splits a "Given Family" name on the first space: one
// token means a surname-only entry (collectives, mononyms).
func teiAuthorFromName(name string) teiAuthor {
	author := teiAuthor{Role: "aut"}
	first, rest, found := strings.Cut(strings.TrimSpace(name), " ")
	if found {
		author.PersName.Forename = &teiForename{Type: "first", Value: first}
		author.PersName.Surname = rest
	} else {
		author.PersName.Surname = first
	}
	return author
}
