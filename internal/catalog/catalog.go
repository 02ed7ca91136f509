package catalog

import (
	"fmt"
	"os"

	"kiwillet/internal/models"
	"kiwillet/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

type serviceEntry struct {
	Id              string `yaml:"id"`
	Name            string `yaml:"name"`
	Category        string `yaml:"category"`
	SuggestedAmount string `yaml:"suggested_amount"`
}

type catalogFile struct {
	Services []serviceEntry `yaml:"services"`
}

var defaultEntries = []serviceEntry{
	{Id: "1", Name: "Luz", Category: "Hogar", SuggestedAmount: "4500"},
	{Id: "2", Name: "Agua", Category: "Hogar", SuggestedAmount: "3000"},
	{Id: "3", Name: "Gas", Category: "Hogar", SuggestedAmount: "2500"},
	{Id: "4", Name: "Internet", Category: "Comunicación", SuggestedAmount: "6500"},
	{Id: "5", Name: "Telefonía", Category: "Comunicación", SuggestedAmount: "2200"},
}

// Load reads the payable-service catalog. When the file is absent it is
// seeded with the default catalog first.
func Load(paths *store.Paths) ([]models.Service, error) {
	path, err := paths.CatalogFile()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := seed(path); err != nil {
			return nil, err
		}
		zap.L().Info("Service catalog seeded", zap.String("path", path))
		return decode(catalogFile{Services: defaultEntries})
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", path, err)
	}
	return decode(file)
}

// Find returns the service with the given id.
func Find(services []models.Service, id string) (models.Service, bool) {
	for _, service := range services {
		if service.Id == id {
			return service, true
		}
	}
	return models.Service{}, false
}

func decode(file catalogFile) ([]models.Service, error) {
	services := make([]models.Service, 0, len(file.Services))
	for i, entry := range file.Services {
		if entry.Id == "" {
			return nil, fmt.Errorf("service at index %d missing id", i)
		}
		if entry.Name == "" {
			return nil, fmt.Errorf("service at index %d missing name", i)
		}
		amount, err := decimal.NewFromString(entry.SuggestedAmount)
		if err != nil {
			return nil, fmt.Errorf("service %s has invalid suggested amount %q: %w", entry.Id, entry.SuggestedAmount, err)
		}
		services = append(services, models.Service{
			Id:              entry.Id,
			Name:            entry.Name,
			Category:        entry.Category,
			SuggestedAmount: amount,
		})
	}
	return services, nil
}

func seed(path string) error {
	data, err := yaml.Marshal(catalogFile{Services: defaultEntries})
	if err != nil {
		return fmt.Errorf("unable to serialize default catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("unable to seed catalog %s: %w", path, err)
	}
	return nil
}
