package model

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
	Color    string `json:"color"`
}

// Palette - цвета демо-пользователей, новые пользователи получают их по кругу
var Palette = []string{"#3B82F6", "#8B5CF6", "#10B981"}

// DemoUsers возвращает новый срез на каждый вызов
func DemoUsers() []User {
	return []User{
		{ID: "1", Username: "Alice", Email: "alice@example.com", Color: Palette[0]},
		{ID: "2", Username: "Bob", Email: "bob@example.com", Color: Palette[1]},
		{ID: "3", Username: "Charlie", Email: "charlie@example.com", Color: Palette[2]},
	}
}

func FindUser(users []User, id string) (User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}
