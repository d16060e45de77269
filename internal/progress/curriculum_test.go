package progress

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestTopicCount(t *testing.T) {
	c := DefaultCurriculum()
	tests := []struct {
		subject, grade string
		want           int
	}{
		{"Physics", "12", 14},
		{"physics", " 12 ", 14},
		{"Mathematics", "10", 14},
		{"Physics", "3", DefaultTopicCount},
		{"Underwater Basket Weaving", "12", DefaultTopicCount},
	}
	for _, tt := range tests {
		if got := c.TopicCount(tt.subject, tt.grade); got != tt.want {
			t.Errorf("TopicCount(%q, %q) = %d, want %d", tt.subject, tt.grade, got, tt.want)
		}
	}
}

func TestGroups(t *testing.T) {
	c := DefaultCurriculum()

	got := c.Groups("11", "CBSE")
	want := []string{"science-pcm", "science-pcb", "commerce", "arts"}
	if !slices.Equal(got, want) {
		t.Errorf("Groups(11, CBSE) = %v, want %v", got, want)
	}

	// Board-specific groups replace the generic ones.
	if got := c.Groups("10", "icse"); !slices.Equal(got, []string{"core"}) {
		t.Errorf("Groups(10, icse) = %v", got)
	}
	if got := c.Groups("5", "CBSE"); len(got) != 0 {
		t.Errorf("Groups(5) = %v, want none", got)
	}
}

func TestSubjectsFor(t *testing.T) {
	c := DefaultCurriculum()

	subjects, err := c.SubjectsFor("12", "CBSE", "Commerce")
	if err != nil {
		t.Fatalf("SubjectsFor: %v", err)
	}
	if !slices.Contains(subjects, "Accountancy") {
		t.Errorf("commerce subjects = %v", subjects)
	}

	icse, err := c.SubjectsFor("10", "ICSE", "")
	if err != nil {
		t.Fatalf("SubjectsFor single group: %v", err)
	}
	if !slices.Contains(icse, "Chemistry") {
		t.Errorf("ICSE subjects = %v", icse)
	}

	if _, err := c.SubjectsFor("12", "CBSE", ""); err == nil {
		t.Error("expected error when several groups exist and none is named")
	}
	if _, err := c.SubjectsFor("12", "CBSE", "music"); err == nil {
		t.Error("expected error for unknown group")
	}
	if _, err := c.SubjectsFor("4", "CBSE", "core"); err == nil {
		t.Error("expected error for grade without groups")
	}

	// Returned slices are copies.
	subjects[0] = "changed"
	again, _ := c.SubjectsFor("12", "CBSE", "commerce")
	if again[0] == "changed" {
		t.Error("SubjectsFor returned shared slice")
	}
}

func TestLoadCurriculum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curriculum.toml")
	doc := `
default_topics = 8

[[topics]]
subject = "Robotics"
grade = "8"
count = 4

[[groups]]
grade = "8"
name = "stem"
subjects = ["Robotics", "Mathematics"]
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadCurriculum(path)
	if err != nil {
		t.Fatalf("LoadCurriculum: %v", err)
	}
	if got := c.TopicCount("Robotics", "8"); got != 4 {
		t.Errorf("Robotics = %d, want 4", got)
	}
	if got := c.TopicCount("Mathematics", "8"); got != 8 {
		t.Errorf("default = %d, want 8", got)
	}
}

func TestParseCurriculumRejectsBadCounts(t *testing.T) {
	_, err := ParseCurriculum(`
[[topics]]
subject = "Math"
grade = "9"
count = 0
`)
	if err == nil {
		t.Error("expected error for zero topic count")
	}
}
