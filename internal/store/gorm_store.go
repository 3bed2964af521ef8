package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/models"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order("user_id ASC").Find(&users).Error
	return users, translate(err)
}

func (s *GormStore) GetUserByID(ctx context.Context, userID uint, withLawyer bool) (*models.User, error) {
	q := s.db.WithContext(ctx)
	if withLawyer {
		q = q.Preload("Lawyer")
	}
	var user models.User
	if err := q.First(&user, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) GetUserByFirebaseID(ctx context.Context, firebaseID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "firebase_id = ?", firebaseID).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Omit("Lawyer").Create(user).Error)
}

func (s *GormStore) CreateLawyerAccount(ctx context.Context, user *models.User, lawyer *models.Lawyer) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lawyer").Create(user).Error; err != nil {
			return err
		}
		lawyer.LawyerID = user.UserID
		return tx.Create(lawyer).Error
	}))
}

func (s *GormStore) GetLawyer(ctx context.Context, lawyerID uint) (*models.Lawyer, error) {
	var lawyer models.Lawyer
	if err := s.db.WithContext(ctx).First(&lawyer, "lawyer_id = ?", lawyerID).Error; err != nil {
		return nil, translate(err)
	}
	return &lawyer, nil
}

func (s *GormStore) UpdateLawyerProfile(ctx context.Context, userID uint, up UserPatch, lp LawyerPatch) (*models.User, *models.Lawyer, error) {
	var user models.User
	var lawyer models.Lawyer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "user_id = ?", userID).Error; err != nil {
			return err
		}
		if cols := up.columns(); len(cols) > 0 {
			if err := tx.Model(&user).Updates(cols).Error; err != nil {
				return err
			}
			up.apply(&user)
		}

		err := tx.First(&lawyer, "lawyer_id = ?", userID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			lawyer = models.Lawyer{LawyerID: userID, Specialization: pq.StringArray{}}
			lp.apply(&lawyer)
			return tx.Create(&lawyer).Error
		case err != nil:
			return err
		}

		cols := map[string]any{}
		if lp.ProfileBio != nil {
			cols["profile_bio"] = *lp.ProfileBio
		}
		if lp.Specialization != nil {
			cols["specialization"] = pq.StringArray(*lp.Specialization)
		}
		if len(cols) == 0 {
			return nil
		}
		if err := tx.Model(&lawyer).Updates(cols).Error; err != nil {
			return err
		}
		lp.apply(&lawyer)
		return nil
	})
	if err != nil {
		return nil, nil, translate(err)
	}
	return &user, &lawyer, nil
}

func (s *GormStore) SetLawyerVerification(ctx context.Context, lawyerID uint, verified bool) (*models.Lawyer, error) {
	return s.updateLawyer(ctx, lawyerID, map[string]any{"credentials_verified": verified})
}

func (s *GormStore) SetVerificationDocument(ctx context.Context, lawyerID uint, url string) (*models.Lawyer, error) {
	return s.updateLawyer(ctx, lawyerID, map[string]any{"verification_document_url": url})
}

func (s *GormStore) updateLawyer(ctx context.Context, lawyerID uint, cols map[string]any) (*models.Lawyer, error) {
	var lawyer models.Lawyer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&lawyer, "lawyer_id = ?", lawyerID).Error; err != nil {
			return err
		}
		if err := tx.Model(&lawyer).Updates(cols).Error; err != nil {
			return err
		}
		return tx.First(&lawyer, "lawyer_id = ?", lawyerID).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &lawyer, nil
}

// lawyerSearchQuery builds the conjunctive lawyer query. It is split out so the
// generated SQL can be inspected without a database.
func lawyerSearchQuery(db *gorm.DB, c LawyerCriteria) *gorm.DB {
	q := db.Model(&models.User{}).
		Select("users.*").
		Where("users.role = ?", models.RoleLawyer)
	if len(c.Locations) > 0 {
		q = q.Where("users.location IN ?", c.Locations)
	}
	if c.NeedsProfile() {
		q = q.Joins("JOIN lawyers ON lawyers.lawyer_id = users.user_id")
		if c.VerifiedOnly {
			q = q.Where("lawyers.credentials_verified = ?", true)
		}
		if c.MinRating != nil {
			q = q.Where("lawyers.rating >= ?", *c.MinRating)
		}
		if len(c.Specializations) > 0 {
			q = q.Where("lawyers.specialization && ?::text[]", pq.StringArray(c.Specializations))
		}
	}
	return q.Order("users.user_id ASC")
}

func (s *GormStore) SearchLawyers(ctx context.Context, c LawyerCriteria) ([]models.User, error) {
	var users []models.User
	err := lawyerSearchQuery(s.db.WithContext(ctx), c).Preload("Lawyer").Find(&users).Error
	return users, translate(err)
}

func (s *GormStore) FindChat(ctx context.Context, userID, lawyerID uint) (*models.Chat, error) {
	return s.findChat(s.db.WithContext(ctx), userID, lawyerID)
}

func (s *GormStore) FindChatPrimary(ctx context.Context, userID, lawyerID uint) (*models.Chat, error) {
	return s.findChat(s.db.WithContext(ctx).Clauses(dbresolver.Write), userID, lawyerID)
}

func (s *GormStore) findChat(q *gorm.DB, userID, lawyerID uint) (*models.Chat, error) {
	var chat models.Chat
	if err := q.First(&chat, "user_id = ? AND lawyer_id = ?", userID, lawyerID).Error; err != nil {
		return nil, translate(err)
	}
	return &chat, nil
}

func (s *GormStore) GetChat(ctx context.Context, chatID uint) (*models.Chat, error) {
	var chat models.Chat
	if err := s.db.WithContext(ctx).First(&chat, "chat_id = ?", chatID).Error; err != nil {
		return nil, translate(err)
	}
	return &chat, nil
}

func (s *GormStore) CreateChatWithMessage(ctx context.Context, chat *models.Chat, first *models.ChatMessage) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User", "LawyerUser").Create(chat).Error; err != nil {
			return err
		}
		first.ChatID = chat.ChatID
		return tx.Omit("Chat", "Sender").Create(first).Error
	}))
}

func (s *GormStore) AppendMessage(ctx context.Context, msg *models.ChatMessage) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Chat", "Sender").Create(msg).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Chat{}).
			Where("chat_id = ?", msg.ChatID).
			Update("updated_at", msg.CreatedAt)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}))
}

func (s *GormStore) ListChatsForParticipant(ctx context.Context, userID uint) ([]models.Chat, error) {
	var chats []models.Chat
	err := s.db.WithContext(ctx).
		Where("user_id = ? OR lawyer_id = ?", userID, userID).
		Order("updated_at DESC, chat_id DESC").
		Find(&chats).Error
	return chats, translate(err)
}

func (s *GormStore) ListMessages(ctx context.Context, chatID uint) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	err := s.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC, message_id ASC").
		Find(&msgs).Error
	return msgs, translate(err)
}

func (s *GormStore) MarkRead(ctx context.Context, chatID, readerID uint) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.ChatMessage{}).
		Where("chat_id = ? AND sender_id <> ? AND is_read = ?", chatID, readerID, false).
		Updates(map[string]any{"is_read": true})
	return res.RowsAffected, translate(res.Error)
}
