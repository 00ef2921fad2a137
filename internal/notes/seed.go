package notes

import (
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/notekeep/internal/clock"
	"github.com/avolkov/notekeep/internal/obs"
)

// SeedSamples writes a small set of example notes for the seeded accounts
// when the notes document has never been saved. Idempotent: once the
// document exists, even emptied, SeedSamples does nothing.
func (s *Service) SeedSamples() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.Exists(documentName) {
		return nil
	}

	now := s.clock.Now()
	sample := func(title, content, category string, age time.Duration) Note {
		ts := clock.Format(now.Add(-age))
		return Note{
			ID:        uuid.New().String(),
			Title:     title,
			Content:   content,
			Category:  category,
			CreatedAt: ts,
			UpdatedAt: ts,
		}
	}

	all := map[string][]Note{
		"admin": {
			sample("Meeting Notes",
				"Discussed project timeline and deliverables. Key points:\n- Complete design mockups by Friday\n- Review user feedback\n- Plan next sprint",
				"Work", 2*24*time.Hour),
			sample("HTML Basics",
				"Learn about the basic structure of HTML documents, including elements like <html>, <head>, and <body>.\n\nKey concepts:\n- Semantic HTML\n- Document structure\n- Meta tags",
				"HTML", 5*24*time.Hour),
			sample("CSS Styling",
				"Explore CSS selectors, properties, and values to style HTML elements.\n\n- Selectors: class, id, element\n- Box model\n- Flexbox and Grid",
				"CSS", 7*24*time.Hour),
		},
		"demo": {
			sample("Grocery List",
				"Shopping list for this week:\n- Milk\n- Bread\n- Eggs\n- Apples\n- Chicken breast",
				"Personal", 7*24*time.Hour),
		},
	}

	if err := s.store.Save(documentName, all); err != nil {
		return err
	}
	obs.Pkg("notes").Info("seeded sample notes", "users", len(all))
	return nil
}
