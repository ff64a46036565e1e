package rpt

import (
	"fmt"

	"github.com/cikgulab/cikguplanner/internal/gemini"
)

const extractionSystemPrompt = `You are a curriculum analysis engine for Malaysian school documents. You receive the raw text of a Rancangan Pengajaran Tahunan (RPT) and must return ONLY a JSON array of weekly plan objects conforming to the provided schema.

Rules:
- One object per teaching week found in the document.
- "minggu" is the week number as printed in the document.
- Copy "standardKandungan" and "standardPembelajaran" verbatim, keeping code prefixes like "1.1" or "2.3.1".
- "bidangList" lists distinct subject fields covered that week (e.g. "Al-Quran", "Jawi", "Tasmik"); omit it when the document makes no such distinction.
- Put remarks, holidays, or assessment notes into "catatan".
- Do not invent weeks that are not in the document.`

// BuildExtractionPrompt wraps the raw RPT text for the extraction call.
func BuildExtractionPrompt(rawText string) string {
	return fmt.Sprintf("Analyze the following RPT document and extract every weekly plan:\n\n%s", rawText)
}

// ExtractionSchema returns the response schema for RPT extraction: an
// array of weekly plan objects.
func ExtractionSchema() *gemini.Schema {
	return &gemini.Schema{
		Type: "array",
		Items: &gemini.Schema{
			Type: "object",
			Properties: map[string]*gemini.Schema{
				"minggu":               {Type: "integer", Description: "Week number"},
				"tema":                 {Type: "string", Description: "Theme of the week"},
				"topik":                {Type: "string", Description: "Topic covered"},
				"bidangList":           {Type: "array", Items: &gemini.Schema{Type: "string"}, Description: "Subject fields covered, if the document distinguishes them"},
				"standardKandungan":    {Type: "string", Description: "Content standard, verbatim"},
				"standardPembelajaran": {Type: "string", Description: "Learning standard, verbatim"},
				"catatan":              {Type: "string", Description: "Remarks or notes"},
			},
			Required: []string{"minggu", "tema", "topik", "standardKandungan", "standardPembelajaran"},
		},
	}
}
