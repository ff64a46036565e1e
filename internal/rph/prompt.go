package rph

import (
	"fmt"
	"strings"
)

const generationSystemPrompt = `You are an experienced Malaysian school teacher writing a Rancangan Pengajaran Harian (RPH). Produce a complete daily lesson plan in Malay, formatted as markdown with these sections: Maklumat Asas, Objektif Pembelajaran, Kriteria Kejayaan, Aktiviti PdP (Permulaan, Perkembangan, Penutup), Bahan Bantu Mengajar, Penilaian, and Refleksi (left blank for the teacher to fill).

Rules:
- Ground every objective in the given standards; do not invent standards.
- Activities must be realistic for one lesson slot.
- Keep Refleksi as empty bullet points.`

const jawiSystemPrompt = `You convert Malay text written in Rumi (Latin script) into Jawi script. Return ONLY the converted text, preserving the markdown structure of the input. Do not translate, explain, or add anything.`

// BuildGenerationPrompt composes the generation request text from the
// weekly record and the scheduling selection.
func BuildGenerationPrompt(req Request) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Jana RPH untuk hari %s", req.Day)
	if req.Date != "" {
		fmt.Fprintf(&sb, " (%s)", req.Date)
	}
	fmt.Fprintf(&sb, ", kelas %s, masa %s.\n\n", req.ClassName, req.Time)

	fmt.Fprintf(&sb, "Minggu %d\n", req.Week.WeekNumber)
	fmt.Fprintf(&sb, "Tema: %s\n", req.Week.Theme)
	fmt.Fprintf(&sb, "Topik: %s\n", req.Week.Topic)
	if req.SelectedField != "" {
		fmt.Fprintf(&sb, "Bidang: %s\n", req.SelectedField)
	} else if len(req.Week.Fields) > 0 {
		fmt.Fprintf(&sb, "Bidang: %s\n", strings.Join(req.Week.Fields, ", "))
	}
	fmt.Fprintf(&sb, "Standard Kandungan: %s\n", req.Week.ContentStandard)
	fmt.Fprintf(&sb, "Standard Pembelajaran: %s\n", req.Week.LearningStandard)
	if req.Week.Notes != "" {
		fmt.Fprintf(&sb, "Catatan RPT: %s\n", req.Week.Notes)
	}

	if req.AdditionalContext != "" {
		fmt.Fprintf(&sb, "\nKonteks tambahan daripada guru:\n%s\n", req.AdditionalContext)
	}

	return sb.String()
}
