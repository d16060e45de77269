package progress

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// DefaultTopicCount is used for subject/grade pairs absent from the table.
const DefaultTopicCount = 15

//go:embed curriculum.toml
var defaultCurriculumTOML string

// curriculumFile maps the TOML curriculum document.
type curriculumFile struct {
	DefaultTopics int `toml:"default_topics"`
	Topics        []struct {
		Subject string `toml:"subject"`
		Grade   string `toml:"grade"`
		Count   int    `toml:"count"`
	} `toml:"topics"`
	Groups []Group `toml:"groups"`
}

// Group is a named subject combination offered for a grade. An empty
// Board applies to every board without its own groups for that grade.
type Group struct {
	Grade    string   `toml:"grade"`
	Board    string   `toml:"board"`
	Name     string   `toml:"name"`
	Subjects []string `toml:"subjects"`
}

type topicKey struct {
	subject string
	grade   string
}

// Curriculum is the static topic-count and subject-group table.
type Curriculum struct {
	defaultTopics int
	topics        map[topicKey]int
	groups        []Group
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func newCurriculum(f curriculumFile) (*Curriculum, error) {
	c := &Curriculum{
		defaultTopics: f.DefaultTopics,
		topics:        make(map[topicKey]int, len(f.Topics)),
		groups:        f.Groups,
	}
	if c.defaultTopics <= 0 {
		c.defaultTopics = DefaultTopicCount
	}
	for _, t := range f.Topics {
		if t.Count <= 0 {
			return nil, fmt.Errorf("curriculum: %s grade %s: topic count must be positive", t.Subject, t.Grade)
		}
		c.topics[topicKey{normalize(t.Subject), normalize(t.Grade)}] = t.Count
	}
	for _, g := range f.Groups {
		if g.Name == "" || len(g.Subjects) == 0 {
			return nil, fmt.Errorf("curriculum: grade %s: group needs a name and subjects", g.Grade)
		}
	}
	return c, nil
}

// ParseCurriculum decodes a curriculum TOML document.
func ParseCurriculum(data string) (*Curriculum, error) {
	var f curriculumFile
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, fmt.Errorf("decode curriculum: %w", err)
	}
	return newCurriculum(f)
}

// LoadCurriculum reads a curriculum TOML file.
func LoadCurriculum(path string) (*Curriculum, error) {
	var f curriculumFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("decode curriculum %s: %w", path, err)
	}
	return newCurriculum(f)
}

var loadDefaultCurriculum = sync.OnceValue(func() *Curriculum {
	c, err := ParseCurriculum(defaultCurriculumTOML)
	if err != nil {
		panic(err)
	}
	return c
})

// DefaultCurriculum returns the embedded curriculum table.
func DefaultCurriculum() *Curriculum { return loadDefaultCurriculum() }

// TopicCount returns the number of topics for subject at grade.
func (c *Curriculum) TopicCount(subject, grade string) int {
	if n, ok := c.topics[topicKey{normalize(subject), normalize(grade)}]; ok {
		return n
	}
	return c.defaultTopics
}

// groupsFor returns the board-specific groups for grade, falling back to
// the board-agnostic ones.
func (c *Curriculum) groupsFor(grade, board string) []Group {
	var specific, generic []Group
	for _, g := range c.groups {
		if normalize(g.Grade) != normalize(grade) {
			continue
		}
		switch {
		case g.Board == "":
			generic = append(generic, g)
		case normalize(g.Board) == normalize(board):
			specific = append(specific, g)
		}
	}
	if len(specific) > 0 {
		return specific
	}
	return generic
}

// Groups lists the group names offered for grade and board.
func (c *Curriculum) Groups(grade, board string) []string {
	var names []string
	for _, g := range c.groupsFor(grade, board) {
		names = append(names, g.Name)
	}
	return names
}

// SubjectsFor returns the subjects of the named group for grade and board.
// An empty group name selects the only group when exactly one exists.
func (c *Curriculum) SubjectsFor(grade, board, group string) ([]string, error) {
	groups := c.groupsFor(grade, board)
	if len(groups) == 0 {
		return nil, fmt.Errorf("no subject groups for grade %q board %q", grade, board)
	}
	if group == "" {
		if len(groups) == 1 {
			return slices.Clone(groups[0].Subjects), nil
		}
		return nil, fmt.Errorf("grade %q offers several groups, choose one of %s",
			grade, strings.Join(c.Groups(grade, board), ", "))
	}
	for _, g := range groups {
		if normalize(g.Name) == normalize(group) {
			return slices.Clone(g.Subjects), nil
		}
	}
	return nil, fmt.Errorf("unknown group %q for grade %q, choose one of %s",
		group, grade, strings.Join(c.Groups(grade, board), ", "))
}
