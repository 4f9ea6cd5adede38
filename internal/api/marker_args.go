package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"window-measure/internal/domain/entity"
)

// parseMarkerArgs разбирает "<размер_мм> [кол-во] [словарь] [id]".
// Незаданные поля берутся из current.
func parseMarkerArgs(args string, current entity.MarkerConfig) (entity.MarkerConfig, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 || len(fields) > 4 {
		return current, fmt.Errorf("ожидается от 1 до 4 аргументов, получено %d", len(fields))
	}

	cfg := current
	size, err := strconv.Atoi(fields[0])
	if err != nil {
		return current, fmt.Errorf("размер маркера должен быть целым числом: %q", fields[0])
	}
	cfg.SizeMM = size

	if len(fields) > 1 {
		count, err := strconv.Atoi(fields[1])
		if err != nil {
			return current, fmt.Errorf("количество маркеров должно быть 1 или 2: %q", fields[1])
		}
		cfg.Count = count
	}
	if len(fields) > 2 {
		family, err := entity.ParseMarkerFamily(strings.ToLower(fields[2]))
		if err != nil {
			return current, fmt.Errorf("неизвестный словарь маркеров %q", fields[2])
		}
		cfg.Family = family
	}
	if len(fields) > 3 {
		id, err := strconv.Atoi(fields[3])
		if err != nil {
			return current, fmt.Errorf("ID маркера должен быть целым числом: %q", fields[3])
		}
		cfg.ID = id
	}

	if err := cfg.Validate(); err != nil {
		return current, err
	}
	return cfg, nil
}
