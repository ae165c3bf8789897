package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/mod/semver"

	"github.com/abhisek/skillpath/internal/course"
)

// FormatVersion is written into every stored document. Readers accept any
// version with the same major.
const FormatVersion = "v1.1.0"

// formatNoExam is the first version that stores the final exam state.
const formatNoExam = "v1.1.0"

// Document kinds.
const (
	KindLearner  = "learner"
	KindInstance = "instance"
)

// ErrUnsupportedFormat is returned for documents written by an
// incompatible format version.
var ErrUnsupportedFormat = errors.New("unsupported document format")

type envelope struct {
	Format string          `json:"format"`
	Kind   string          `json:"kind"`
	Data   json.RawMessage `json:"data"`
}

// EncodeLearner serializes a learner into a versioned document.
func EncodeLearner(l *course.Learner) ([]byte, error) {
	return encode(KindLearner, l)
}

// EncodeInstance serializes a course instance into a versioned document.
func EncodeInstance(inst *course.Instance) ([]byte, error) {
	return encode(KindInstance, inst)
}

func encode(kind string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", kind, err)
	}
	return json.Marshal(envelope{Format: FormatVersion, Kind: kind, Data: data})
}

// DecodeLearner parses a learner document.
func DecodeLearner(b []byte) (*course.Learner, error) {
	env, err := open(b, KindLearner)
	if err != nil {
		return nil, err
	}
	var l course.Learner
	if err := json.Unmarshal(env.Data, &l); err != nil {
		return nil, fmt.Errorf("unmarshal learner: %w", err)
	}
	if l.Gamification.Achievements == nil {
		l.Gamification.Achievements = course.NewSet()
	}
	if l.Gamification.Level < 1 {
		l.Gamification.Level = 1
	}
	if l.Enrollments == nil {
		l.Enrollments = map[string]string{}
	}
	return &l, nil
}

// DecodeInstance parses an instance document. Documents older than the
// exam state format get a fresh attempt cycle.
func DecodeInstance(b []byte) (*course.Instance, error) {
	env, err := open(b, KindInstance)
	if err != nil {
		return nil, err
	}
	var inst course.Instance
	if err := json.Unmarshal(env.Data, &inst); err != nil {
		return nil, fmt.Errorf("unmarshal instance: %w", err)
	}

	p := &inst.Progress
	if semver.Compare(env.Format, formatNoExam) < 0 || p.FinalExam.Status == "" {
		p.FinalExam = course.NewExamState()
	}
	if p.FinalExam.History == nil {
		p.FinalExam.History = []course.ExamTurn{}
	}
	if p.CompletedItems == nil {
		p.CompletedItems = course.NewSet()
	}
	if p.QuizScores == nil {
		p.QuizScores = map[int]course.QuizScore{}
	}
	if p.TutorHistory == nil {
		p.TutorHistory = []course.TutorMessage{}
	}
	return &inst, nil
}

func open(b []byte, kind string) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("unmarshal %s document: %w", kind, err)
	}
	if !semver.IsValid(env.Format) {
		return nil, fmt.Errorf("%w: invalid version %q", ErrUnsupportedFormat, env.Format)
	}
	if semver.Major(env.Format) != semver.Major(FormatVersion) {
		return nil, fmt.Errorf("%w: %s (reader speaks %s)", ErrUnsupportedFormat, env.Format, semver.Major(FormatVersion))
	}
	if env.Kind != kind {
		return nil, fmt.Errorf("%w: got %q document, want %q", ErrUnsupportedFormat, env.Kind, kind)
	}
	return &env, nil
}
