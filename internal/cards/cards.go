package cards

import (
	"errors"
	"fmt"

	"kiwillet/internal/audit"
	"kiwillet/internal/models"
	"kiwillet/internal/store"
)

// Sentinel errors for card operations
var (
	ErrDuplicateCard = errors.New("card id already registered")
	ErrCardNotFound  = errors.New("card not found")
)

var cardFields = []string{"id", "tipo", "entidad", "numero", "vencimiento"}

// Store keeps one tabular card file per user.
type Store struct {
	paths *store.Paths
	audit *audit.Log
}

func NewStore(paths *store.Paths, auditLog *audit.Log) *Store {
	return &Store{paths: paths, audit: auditLog}
}

// Load returns the user's cards; a missing file is an empty list.
func (s *Store) Load(user string) ([]models.Card, error) {
	path, err := s.paths.CardsFile(user)
	if err != nil {
		return nil, err
	}
	rows, err := store.LoadRows(path)
	if err != nil {
		return nil, fmt.Errorf("unable to load cards for %s: %w", user, err)
	}

	cards := make([]models.Card, 0, len(rows))
	for _, row := range rows {
		cards = append(cards, models.Card{
			Id:     row["id"],
			Kind:   row["tipo"],
			Issuer: row["entidad"],
			Number: row["numero"],
			Expiry: row["vencimiento"],
		})
	}
	return cards, nil
}

// Add registers a card, rejecting duplicate ids, and persists the list.
func (s *Store) Add(user string, cards []models.Card, card models.Card) ([]models.Card, error) {
	for _, existing := range cards {
		if existing.Id == card.Id {
			return cards, fmt.Errorf("%w: %s", ErrDuplicateCard, card.Id)
		}
	}
	cards = append(cards, card)
	if err := s.save(user, cards); err != nil {
		return cards, err
	}
	s.audit.Event("alta_tarjeta", fmt.Sprintf("%s:%s", user, card.Id))
	return cards, nil
}

// Remove deletes the card with the given id and persists the list.
func (s *Store) Remove(user string, cards []models.Card, id string) ([]models.Card, error) {
	index := -1
	for i, card := range cards {
		if card.Id == id {
			index = i
			break
		}
	}
	if index < 0 {
		return cards, fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	cards = append(cards[:index], cards[index+1:]...)
	if err := s.save(user, cards); err != nil {
		return cards, err
	}
	s.audit.Event("baja_tarjeta", fmt.Sprintf("%s:%s", user, id))
	return cards, nil
}

// Find returns the card with the given id.
func Find(cards []models.Card, id string) (models.Card, bool) {
	for _, card := range cards {
		if card.Id == id {
			return card, true
		}
	}
	return models.Card{}, false
}

// Mask hides all but the last four digits of a card number.
func Mask(number string) string {
	if len(number) >= 4 {
		return "****" + number[len(number)-4:]
	}
	return number
}

func (s *Store) save(user string, cards []models.Card) error {
	path, err := s.paths.CardsFile(user)
	if err != nil {
		return err
	}
	rows := make([]store.Row, 0, len(cards))
	for _, card := range cards {
		rows = append(rows, store.Row{
			"id":          card.Id,
			"tipo":        card.Kind,
			"entidad":     card.Issuer,
			"numero":      card.Number,
			"vencimiento": card.Expiry,
		})
	}
	if err := store.SaveRows(path, cardFields, rows); err != nil {
		return fmt.Errorf("unable to persist cards for %s: %w", user, err)
	}
	return nil
}
