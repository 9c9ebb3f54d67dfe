package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleThread() ThreadRecord {
	return ThreadRecord{
		ThreadID:     "12345",
		URL:          "https://forum.example/forums/12345",
		Title:        "ไมเกรน (Migraine)",
		Tags:         []string{"ปวดหัว", "headache"},
		GenderAge:    "หญิง อายุ 25 ปี",
		Likes:        3,
		QuestionText: "ปวดหัวข้างเดียวมาสามวัน",
		Comments: []Comment{
			{AuthorRole: RoleDoctor, AuthorName: "นพ. สมชาย", Text: "อาการเข้าได้กับไมเกรน"},
			{AuthorRole: RolePatient, Text: "ขอบคุณค่ะ"},
		},
		PostedAt:  time.Date(2024, 2, 16, 0, 0, 0, 0, time.UTC),
		ScrapedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRole_IsValid(t *testing.T) {
	tests := []struct {
		role  Role
		valid bool
	}{
		{RoleDoctor, true},
		{RolePatient, true},
		{RoleUnknown, true},
		{Role("nurse"), false},
		{Role(""), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, tt.role.IsValid(), "role %q", tt.role)
	}
}

func TestThreadRecord_HasDoctorReply(t *testing.T) {
	thread := sampleThread()
	assert.True(t, thread.HasDoctorReply())

	thread.Comments = []Comment{{AuthorRole: RolePatient, Text: "bump"}}
	assert.False(t, thread.HasDoctorReply())

	thread.Comments = nil
	assert.False(t, thread.HasDoctorReply())
}

func TestThreadRecord_Equal_IdenticalContent(t *testing.T) {
	a := sampleThread()
	b := sampleThread()
	assert.True(t, a.Equal(&b))
}

func TestThreadRecord_Equal_IgnoresScrapedAt(t *testing.T) {
	a := sampleThread()
	b := sampleThread()
	b.ScrapedAt = b.ScrapedAt.Add(24 * time.Hour)
	assert.True(t, a.Equal(&b))
}

func TestThreadRecord_Equal_DetectsChanges(t *testing.T) {
	base := sampleThread()

	tests := []struct {
		name   string
		mutate func(*ThreadRecord)
	}{
		{"title", func(r *ThreadRecord) { r.Title = "changed" }},
		{"question", func(r *ThreadRecord) { r.QuestionText = "changed" }},
		{"likes", func(r *ThreadRecord) { r.Likes++ }},
		{"tag order", func(r *ThreadRecord) { r.Tags[0], r.Tags[1] = r.Tags[1], r.Tags[0] }},
		{"comment text", func(r *ThreadRecord) { r.Comments[0].Text = "changed" }},
		{"comment role", func(r *ThreadRecord) { r.Comments[0].AuthorRole = RoleUnknown }},
		{"extra comment", func(r *ThreadRecord) { r.Comments = append(r.Comments, Comment{Text: "x"}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := sampleThread()
			tt.mutate(&other)
			assert.False(t, base.Equal(&other))
		})
	}
}

func TestThreadRecord_Equal_Nil(t *testing.T) {
	a := sampleThread()
	assert.False(t, a.Equal(nil))
}

func TestChunkID_Deterministic(t *testing.T) {
	assert.Equal(t, "12345:question:0", ChunkID("12345", ChunkFieldQuestion, 0))
	assert.Equal(t, "12345:comment/1:800", ChunkID("12345", "comment/1", 800))
	assert.Equal(t,
		ChunkID("a", ChunkFieldQuestion, 42),
		ChunkID("a", ChunkFieldQuestion, 42))
}
