// Package lexicon maintains per-language symptom and disease keyword
// lists and matches them against query and retrieved-context text.
// Matching is plain substring scanning over lowercased text - advisory
// labelling, not clinical inference.
package lexicon

import (
	"sort"
	"strings"

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
)

// Lexicon holds the keyword lists for one language.
type Lexicon struct {
	language   domain.Language
	symptoms   []string
	conditions []string
}

// thaiSymptoms are common symptom phrases seen on the forum.
var thaiSymptoms = []string{
	"ปวด", "เจ็บ", "นอนไม่หลับ", "นอนหลับยาก", "เครียด", "วิตก", "กังวล",
	"ซึมเศร้า", "เศร้า", "เบื่อ", "อ่อนเพลีย", "เหนื่อย", "คลื่นไส้", "อาเจียน",
	"ท้องเสีย", "ท้องผูก", "ปวดหัว", "ปวดท้อง", "ไข้", "ไอ", "จาม",
	"ผื่น", "คัน", "บวม", "ปวดประจำเดือน", "ประจำเดือนไม่มา", "หัวใจเต้นแรง",
	"หายใจลำบาก", "เจ็บหน้าอก", "มึนงง", "วิงเวียน", "ตาพร่ามัว",
}

var thaiConditions = []string{
	"ซึมเศร้า", "วิตกกังวล", "นอนไม่หลับ", "ไมเกรน", "เครียด",
	"กรดไหลย้อน", "กระเพาะอาหารอักเสบ", "ภูมิแพ้", "ปวดประจำเดือน",
	"ความดันโลหิตสูง", "เบาหวาน", "ลำไส้แปรปรวน", "โรคปรับตัว",
}

var englishSymptoms = []string{
	"pain", "ache", "headache", "insomnia", "stress", "anxious", "anxiety",
	"depressed", "fatigue", "tired", "nausea", "vomiting", "diarrhea",
	"constipation", "fever", "cough", "sneezing", "rash", "itching",
	"swelling", "cramps", "palpitations", "shortness of breath",
	"chest pain", "dizziness", "blurred vision",
}

var englishConditions = []string{
	"depression", "anxiety", "insomnia", "migraine", "stress",
	"acid reflux", "gastritis", "allergy", "dysmenorrhea",
	"hypertension", "diabetes", "irritable bowel", "adjustment disorder",
}

// ForLanguage returns the lexicon for the given language.
func ForLanguage(lang domain.Language) *Lexicon {
	if lang == domain.LanguageThai {
		return &Lexicon{language: lang, symptoms: thaiSymptoms, conditions: thaiConditions}
	}
	return &Lexicon{language: domain.LanguageEnglish, symptoms: englishSymptoms, conditions: englishConditions}
}

// Language returns the lexicon's language.
func (l *Lexicon) Language() domain.Language {
	return l.language
}

// ExtractSymptoms returns the symptom keywords present in any of the
// given texts, deduplicated and sorted alphabetically.
func (l *Lexicon) ExtractSymptoms(texts []string) []string {
	seen := make(map[string]bool)
	for _, text := range texts {
		lower := strings.ToLower(text)
		for _, symptom := range l.symptoms {
			if seen[symptom] {
				continue
			}
			if strings.Contains(lower, symptom) {
				seen[symptom] = true
			}
		}
	}

	found := make([]string, 0, len(seen))
	for symptom := range seen {
		found = append(found, symptom)
	}
	sort.Strings(found)
	return found
}

// CountConditions tallies disease-name mentions across the given
// texts. Results are sorted by descending count, ties broken
// alphabetically for stable output.
func (l *Lexicon) CountConditions(texts []string) []domain.Condition {
	counts := make(map[string]int)
	for _, text := range texts {
		lower := strings.ToLower(text)
		for _, condition := range l.conditions {
			counts[condition] += strings.Count(lower, condition)
		}
	}

	conditions := make([]domain.Condition, 0, len(counts))
	for label, count := range counts {
		if count > 0 {
			conditions = append(conditions, domain.Condition{Label: label, Score: count})
		}
	}

	sort.Slice(conditions, func(i, j int) bool {
		if conditions[i].Score != conditions[j].Score {
			return conditions[i].Score > conditions[j].Score
		}
		return conditions[i].Label < conditions[j].Label
	})

	return conditions
}
