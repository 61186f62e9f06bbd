package catalog

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrEmptyName is returned when a topic or sub-topic name is blank.
var ErrEmptyName = errors.New("name must not be empty")

const (
	tempQuestionPrefix  = "temp-"
	tempReferencePrefix = "q-"
	placeholderTitle    = "New Question"
)

// NewQuestion is the user input for AddQuestion.
type NewQuestion struct {
	Title      string `validate:"required"`
	Name       string
	Difficulty string `validate:"omitempty,oneof=Easy Medium Hard Unknown"`
	ProblemURL string `validate:"omitempty,url"`
}

var validate = validator.New()

// Store is the in-memory ordered question collection. Mutations are
// local-only and visible to the next Snapshot immediately.
type Store struct {
	mu        sync.RWMutex
	questions []Question
	newID     func() string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{newID: timeOrderedID}
}

// timeOrderedID returns a UUIDv7 string, falling back to a random UUID if
// the clock source fails.
func timeOrderedID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// IsTemporaryID reports whether id was generated locally rather than by
// the catalog feed.
func IsTemporaryID(id string) bool {
	return strings.HasPrefix(id, tempQuestionPrefix)
}

// Load replaces the whole collection.
func (s *Store) Load(records []Question) {
	qs := make([]Question, len(records))
	for i, q := range records {
		qs[i] = q.clone()
	}
	s.mu.Lock()
	s.questions = qs
	s.mu.Unlock()
}

// AddTopic inserts a placeholder question so an otherwise empty topic
// shows up in grouped views.
func (s *Store) AddTopic(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return s.appendPlaceholder(name, DefaultSubTopic), nil
}

// AddSubTopic inserts a placeholder question under topic/name.
func (s *Store) AddSubTopic(topic, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return s.appendPlaceholder(topic, name), nil
}

func (s *Store) appendPlaceholder(topic, subTopic string) string {
	suffix := s.newID()
	q := Question{
		ID:       tempQuestionPrefix + suffix,
		Title:    placeholderTitle,
		Topic:    topic,
		SubTopic: subTopic,
		Reference: &Reference{
			ExternalID: tempReferencePrefix + suffix,
			Name:       placeholderTitle,
			Difficulty: Easy,
		},
	}
	s.append(q)
	return q.ID
}

// AddQuestion appends a fully formed question and returns its id.
func (s *Store) AddQuestion(topic, subTopic string, in NewQuestion) (string, error) {
	if err := validate.Struct(in); err != nil {
		return "", formatValidationError(err)
	}
	if subTopic == "" {
		subTopic = DefaultSubTopic
	}
	difficulty := Difficulty(in.Difficulty)
	if difficulty == "" {
		difficulty = Easy
	}

	suffix := s.newID()
	q := Question{
		ID:       tempQuestionPrefix + suffix,
		Title:    in.Title,
		Topic:    topic,
		SubTopic: subTopic,
		Reference: &Reference{
			ExternalID: tempReferencePrefix + suffix,
			Name:       in.Name,
			Difficulty: difficulty,
			ProblemURL: in.ProblemURL,
		},
	}
	s.append(q)
	return q.ID, nil
}

func (s *Store) append(q Question) {
	s.mu.Lock()
	s.questions = append(s.questions, q)
	s.mu.Unlock()
}

// Update merges patch into the question with the given id. It reports
// whether a question was found.
func (s *Store) Update(id string, patch Patch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.questions {
		if s.questions[i].ID == id {
			s.questions[i] = patch.apply(s.questions[i])
			return true
		}
	}
	return false
}

// Delete removes the question with the given id. It reports whether a
// question was removed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.questions {
		if s.questions[i].ID == id {
			s.questions = append(s.questions[:i:i], s.questions[i+1:]...)
			return true
		}
	}
	return false
}

// Reorder replaces the collection with order. The caller is responsible
// for order being a permutation of the current collection.
func (s *Store) Reorder(order []Question) {
	s.Load(order)
}

// Get returns the question with the given id.
func (s *Store) Get(id string) (Question, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, q := range s.questions {
		if q.ID == id {
			return q.clone(), true
		}
	}
	return Question{}, false
}

// Snapshot returns a copy of the collection in order.
func (s *Store) Snapshot() []Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Question, len(s.questions))
	for i, q := range s.questions {
		out[i] = q.clone()
	}
	return out
}

// Len returns the number of questions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.questions)
}

// formatValidationError flattens validator errors into one message.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, e.Param()))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid URL", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return fmt.Errorf("invalid question: %s", strings.Join(msgs, "; "))
}
