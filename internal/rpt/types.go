package rpt

// WeeklyPlan is one curriculum week extracted from an RPT document.
// JSON field names match the wire format the inference service is asked
// to produce, which is also the shape saved RPHs embed.
type WeeklyPlan struct {
	WeekNumber       int      `json:"minggu"`
	Theme            string   `json:"tema"`
	Topic            string   `json:"topik"`
	Fields           []string `json:"bidangList,omitempty"`
	ContentStandard  string   `json:"standardKandungan"`
	LearningStandard string   `json:"standardPembelajaran"`
	Notes            string   `json:"catatan,omitempty"`
}
