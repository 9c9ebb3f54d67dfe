package services

import (
	"strings"

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
	"github.com/custodia-labs/medforum-cli/internal/core/ports/driven"
)

// minPassageRunes is the smallest passage worth spending budget on.
// A shorter fragment carries no usable clinical context.
const minPassageRunes = 80

// promptTemplate is the language-specific scaffolding around the
// retrieved passages.
type promptTemplate struct {
	preamble      string
	doctorHeading string
	caseHeading   string
	questionLabel string
	closing       string
	noContext     string
}

var promptTemplates = map[domain.Language]promptTemplate{
	domain.LanguageThai: {
		preamble: "คุณเป็นผู้ช่วยให้คำปรึกษาสุขภาพที่มีความเชี่ยวชาญจากฟอรั่ม Agnos Health\n\n" +
			"เมื่อผู้ใช้บอกอาการ ให้:\n" +
			"1. วิเคราะห์อาการและคาดการณ์โรคที่อาจเป็น\n" +
			"2. อ้างอิงจากกรณีในฐานข้อมูลและคำตอบแพทย์\n" +
			"3. แนะนำการดูแลเบื้องต้นและการหาหมอ\n" +
			"4. ห้ามสร้างแหล่งอ้างอิงเอง",
		doctorHeading: "คำแนะนำจากแพทย์ในกรณีคล้ายกัน:",
		caseHeading:   "กรณีคล้ายกันจากฟอรั่ม:",
		questionLabel: "คำถาม:",
		closing:       "ตอบแบบเป็นมิตรและให้ข้อมูลครบถ้วน อย่าสร้างส่วนแหล่งอ้างอิงเอง:",
		noContext: "ไม่พบกรณีที่คล้ายกันในฐานข้อมูล " +
			"ตอบตามความรู้ทั่วไปอย่างระมัดระวัง และแนะนำให้พบแพทย์",
	},
	domain.LanguageEnglish: {
		preamble: "You are a health consultation assistant grounded on the Agnos Health forum.\n\n" +
			"When the user describes symptoms:\n" +
			"1. Analyse the symptoms and suggest likely conditions\n" +
			"2. Ground your answer on the forum cases and doctor replies below\n" +
			"3. Recommend basic self-care and when to see a doctor\n" +
			"4. Do not invent references",
		doctorHeading: "Doctor replies from similar cases:",
		caseHeading:   "Similar cases from the forum:",
		questionLabel: "Question:",
		closing:       "Answer helpfully and completely. Do not add your own reference section:",
		noContext: "No similar cases were found in the database. " +
			"Answer cautiously from general knowledge and recommend seeing a doctor.",
	},
}

// buildPrompt composes the grounded prompt. Passages are spent against
// the rune budget in descending relevance order; when the budget runs
// out, the lowest-relevance passages are truncated or dropped.
func buildPrompt(lang domain.Language, query string, hits []driven.VectorHit, budget int) string {
	tmpl, ok := promptTemplates[lang]
	if !ok {
		tmpl = promptTemplates[domain.LanguageEnglish]
	}

	var b strings.Builder
	b.WriteString(tmpl.preamble)
	b.WriteString("\n\n")

	if len(hits) == 0 {
		b.WriteString(tmpl.noContext)
		b.WriteString("\n\n")
	} else {
		doctor, cases := splitByRole(hits)
		used := promptRunes(&b, tmpl, query)
		remaining := budget - used
		remaining = appendSection(&b, tmpl.doctorHeading, doctor, remaining)
		appendSection(&b, tmpl.caseHeading, cases, remaining)
	}

	b.WriteString(tmpl.questionLabel)
	b.WriteString(" ")
	b.WriteString(query)
	b.WriteString("\n\n")
	b.WriteString(tmpl.closing)
	return b.String()
}

// splitByRole partitions hits into doctor passages and the rest,
// preserving the descending-relevance order within each side.
func splitByRole(hits []driven.VectorHit) (doctor, cases []driven.VectorHit) {
	for _, hit := range hits {
		if hit.Entry.Metadata.Role == domain.RoleDoctor {
			doctor = append(doctor, hit)
		} else {
			cases = append(cases, hit)
		}
	}
	return doctor, cases
}

// promptRunes is the scaffold cost: the preamble already written plus
// the question and closing still to come. Passages spend what is left.
func promptRunes(b *strings.Builder, tmpl promptTemplate, query string) int {
	return runeLen(b.String()) + runeLen(tmpl.questionLabel) + 1 +
		runeLen(query) + 2 + runeLen(tmpl.closing)
}

// appendSection writes one passage section, spending the remaining
// budget. Returns the budget left over for later sections.
func appendSection(b *strings.Builder, heading string, hits []driven.VectorHit, remaining int) int {
	if len(hits) == 0 {
		return remaining
	}
	remaining -= runeLen(heading) + 2

	wrote := false
	for _, hit := range hits {
		if remaining < minPassageRunes {
			break
		}
		line := "- "
		if title := hit.Entry.Metadata.Title; title != "" {
			line += "[" + title + "] "
		}
		line += hit.Entry.Text

		runes := []rune(line)
		if len(runes) > remaining {
			runes = runes[:remaining]
		}
		if !wrote {
			b.WriteString(heading)
			b.WriteString("\n")
			wrote = true
		}
		b.WriteString(string(runes))
		b.WriteString("\n")
		remaining -= len(runes) + 1
	}
	if wrote {
		b.WriteString("\n")
	}
	return remaining
}

func runeLen(s string) int {
	return len([]rune(s))
}
