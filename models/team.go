package models

import "time"

// Team представляет команду. Команды глобальны (не принадлежат тенанту);
// записи лобби и результаты ссылаются на них по id.
type Team struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	CaptainName  string    `json:"captain_name" db:"captain_name"`
	CaptainEmail string    `json:"captain_email" db:"captain_email"`
	LogoKey      *string   `json:"-" db:"logo_key"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
