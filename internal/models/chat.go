package models

import "time"

type ChatStatus string

const (
	ChatStatusPending ChatStatus = "PENDING"
	ChatStatusActive  ChatStatus = "ACTIVE"
	ChatStatusClosed  ChatStatus = "CLOSED"
)

// Chat is the single conversation thread between a client and a lawyer.
type Chat struct {
	ChatID    uint       `gorm:"primaryKey;autoIncrement;column:chat_id" json:"chat_id"`
	UserID    uint       `gorm:"column:user_id;not null;uniqueIndex:idx_chats_parties" json:"user_id"`
	LawyerID  uint       `gorm:"column:lawyer_id;not null;uniqueIndex:idx_chats_parties;index" json:"lawyer_id"`
	Status    ChatStatus `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `gorm:"index" json:"updated_at"`

	User       *User `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE" json:"-"`
	LawyerUser *User `gorm:"foreignKey:LawyerID;references:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// HasParticipant reports whether userID is either party of the thread.
func (c *Chat) HasParticipant(userID uint) bool {
	return c.UserID == userID || c.LawyerID == userID
}

type ChatMessage struct {
	MessageID uint      `gorm:"primaryKey;autoIncrement;column:message_id" json:"message_id"`
	ChatID    uint      `gorm:"column:chat_id;not null;index:idx_chat_messages_order,priority:1" json:"chat_id"`
	SenderID  uint      `gorm:"column:sender_id;not null" json:"sender_id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	IsRead    bool      `gorm:"column:is_read;not null;default:false" json:"is_read"`
	CreatedAt time.Time `gorm:"index:idx_chat_messages_order,priority:2" json:"created_at"`

	Chat   *Chat `gorm:"foreignKey:ChatID;references:ChatID;constraint:OnDelete:CASCADE" json:"-"`
	Sender *User `gorm:"foreignKey:SenderID;references:UserID" json:"-"`
}
