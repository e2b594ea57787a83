package service

import (
	"errors"
)

// Классифицированные ошибки домена. Сервисы оборачивают их через
// fmt.Errorf("%w: ..."), транспортный слой распознает errors.Is
// и отображает в фиксированные HTTP-коды.
var (
	ErrValidation   = errors.New("некорректные данные")
	ErrUnauthorized = errors.New("требуется аутентификация")
	ErrForbidden    = errors.New("доступ запрещен")
	ErrNotFound     = errors.New("не найдено")
	ErrConflict     = errors.New("конфликт")
)
