package questions

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mcoot/ladder/internal/model"
	"github.com/mcoot/ladder/internal/storage"
)

// File is the on-disk question pool format. The first answer of every
// question is the correct one.
type File struct {
	Questions []FileQuestion `yaml:"questions" validate:"required,min=1,unique=ID,dive"`
}

// FileQuestion is a single question in a pool file
type FileQuestion struct {
	ID      string   `yaml:"id" validate:"required"`
	Level   int      `yaml:"level" validate:"min=0,max=14"`
	Text    string   `yaml:"text" validate:"required"`
	Answers []string `yaml:"answers" validate:"len=4,dive,required"`
}

// Service loads question pools into storage
type Service struct {
	storage  storage.Storage
	validate *validator.Validate
	logger   *slog.Logger
}

// New creates a new question pool service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage:  storage,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// LoadFromFile parses a YAML pool file and saves its questions to storage
func (s *Service) LoadFromFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	qs, err := s.Parse(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	if err := s.Load(ctx, qs); err != nil {
		return 0, err
	}

	s.logger.Info("question pool loaded",
		slog.String("path", path),
		slog.Int("count", len(qs)),
	)
	return len(qs), nil
}

// Parse decodes and validates a YAML pool
func (s *Service) Parse(r io.Reader) ([]model.Question, error) {
	var file File
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", model.ErrInvalidQuestion, err)
	}
	if err := s.validate.Struct(file); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidQuestion, err)
	}

	qs := make([]model.Question, len(file.Questions))
	for i, fq := range file.Questions {
		qs[i] = model.Question{
			ID:    model.QuestionID(fq.ID),
			Level: fq.Level,
			Text:  fq.Text,
		}
		copy(qs[i].Answers[:], fq.Answers)
	}
	return qs, nil
}

// Load saves questions directly (useful for testing)
func (s *Service) Load(ctx context.Context, qs []model.Question) error {
	return s.storage.SaveQuestions(ctx, qs)
}

// Count returns the number of questions in the pool
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.storage.QuestionCount(ctx)
}

// MissingLevels returns the levels that have no question at all. A game
// cannot be created while any level is missing.
func (s *Service) MissingLevels(ctx context.Context) ([]int, error) {
	var missing []int
	for _, level := range model.Levels() {
		qs, err := s.storage.QuestionsForLevel(ctx, level)
		if err != nil {
			return nil, err
		}
		if len(qs) == 0 {
			missing = append(missing, level)
		}
	}
	return missing, nil
}
