package db

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alpost/backend/internal/forum"
	"github.com/alpost/backend/internal/models"
)

type tables struct {
	entity string // votable table
	ledger string // vote ledger table
	target string // ledger column referencing entity.id
}

func ledgerTables(kind forum.Kind) tables {
	if kind == forum.KindReply {
		return tables{entity: "replies", ledger: "reply_votes", target: "reply_id"}
	}
	return tables{entity: "posts", ledger: "updoots", target: "post_id"}
}

// ledgerTx implements forum.Tx on an open gorm transaction.
type ledgerTx struct {
	db *gorm.DB
}

func (tx *ledgerTx) TargetExists(ctx context.Context, kind forum.Kind, id int64) (bool, error) {
	t := ledgerTables(kind)

	// KEY SHARE blocks a concurrent delete but not the points update of
	// another voter.
	var ids []int64
	err := tx.db.WithContext(ctx).
		Table(t.entity).
		Clauses(clause.Locking{Strength: "KEY SHARE"}).
		Where("id = ?", id).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

func (tx *ledgerTx) LockTarget(ctx context.Context, kind forum.Kind, id int64) (int64, bool, error) {
	t := ledgerTables(kind)

	var creators []int64
	err := tx.db.WithContext(ctx).
		Table(t.entity).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Limit(1).
		Pluck("creator_id", &creators).Error
	if err != nil || len(creators) == 0 {
		return 0, false, err
	}
	return creators[0], true, nil
}

func (tx *ledgerTx) LockVote(ctx context.Context, kind forum.Kind, userID, targetID int64) (*int16, error) {
	t := ledgerTables(kind)

	var values []int16
	err := tx.db.WithContext(ctx).
		Table(t.ledger).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND "+t.target+" = ?", userID, targetID).
		Limit(1).
		Pluck("value", &values).Error
	if err != nil || len(values) == 0 {
		return nil, err
	}
	return &values[0], nil
}

func (tx *ledgerTx) InsertVote(ctx context.Context, kind forum.Kind, userID, targetID int64, value int16) error {
	if kind == forum.KindReply {
		return tx.db.WithContext(ctx).Create(&models.ReplyVote{UserID: userID, ReplyID: targetID, Value: value}).Error
	}
	return tx.db.WithContext(ctx).Create(&models.Updoot{UserID: userID, PostID: targetID, Value: value}).Error
}

func (tx *ledgerTx) SetVote(ctx context.Context, kind forum.Kind, userID, targetID int64, value int16) error {
	t := ledgerTables(kind)
	return tx.db.WithContext(ctx).
		Table(t.ledger).
		Where("user_id = ? AND "+t.target+" = ?", userID, targetID).
		Update("value", value).Error
}

func (tx *ledgerTx) AddPoints(ctx context.Context, kind forum.Kind, targetID int64, delta int) error {
	t := ledgerTables(kind)
	return tx.db.WithContext(ctx).
		Table(t.entity).
		Where("id = ?", targetID).
		UpdateColumn("points", gorm.Expr("points + ?", delta)).Error
}

func (tx *ledgerTx) DeleteCascade(ctx context.Context, kind forum.Kind, id int64) error {
	db := tx.db.WithContext(ctx)

	if kind == forum.KindReply {
		if err := db.Where("reply_id = ?", id).Delete(&models.ReplyVote{}).Error; err != nil {
			return err
		}
		return db.Delete(&models.Reply{}, id).Error
	}

	replies := tx.db.Model(&models.Reply{}).Select("id").Where("post_id = ?", id)
	if err := db.Where("reply_id IN (?)", replies).Delete(&models.ReplyVote{}).Error; err != nil {
		return err
	}
	if err := db.Where("post_id = ?", id).Delete(&models.Reply{}).Error; err != nil {
		return err
	}
	if err := db.Where("post_id = ?", id).Delete(&models.Updoot{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Post{}, id).Error
}
