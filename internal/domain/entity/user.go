package entity

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu      UserState = "main_menu"      // В главном меню
	StateAwaitingPhoto UserState = "awaiting_photo" // Ожидание фото окна с маркером
	StateProcessing    UserState = "processing"     // Обработка изображения
)

// User представляет пользователя бота
type User struct {
	ID     int64         // Telegram User ID
	ChatID int64         // Telegram Chat ID
	State  UserState     // Текущее состояние пользователя
	Marker *MarkerConfig // Личные настройки маркера, nil означает настройки по умолчанию
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// MarkerOr возвращает личные настройки маркера или переданные по умолчанию
func (u *User) MarkerOr(def MarkerConfig) MarkerConfig {
	if u.Marker == nil {
		return def
	}
	return *u.Marker
}
