package services

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/isdelr/stockroom-be/internal/models"
)

// ItemServiceProvider defines the interface for item services.
type ItemServiceProvider interface {
	GetItemByID(id int64) (*models.Item, error)
	ListItems(skip, limit int) ([]models.Item, error)
	ListItemsByOwner(ownerID int64, skip, limit int) ([]models.Item, error)
	CreateItem(in models.ItemCreate, ownerID int64) (*models.Item, error)
	UpdateItem(id int64, upd models.ItemUpdate) (*models.Item, error)
	DeleteItem(id int64) (*models.Item, error)
}

// ItemService provides business logic for item management.
type ItemService struct {
	db *sql.DB
}

// NewItemService creates a new ItemService.
func NewItemService(db *sql.DB) *ItemService {
	return &ItemService{db: db}
}

func scanItem(row *sql.Row) (*models.Item, error) {
	var item models.Item
	var description sql.NullString
	err := row.Scan(&item.ID, &item.Title, &description, &item.Price, &item.Quantity, &item.OwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if description.Valid {
		item.Description = &description.String
	}
	return &item, nil
}

// GetItemByID retrieves a single item by ID, nil if absent.
func (s *ItemService) GetItemByID(id int64) (*models.Item, error) {
	row := s.db.QueryRow(
		"SELECT id, title, description, price, quantity, owner_id FROM items WHERE id = ?", id)
	return scanItem(row)
}

// ListItems returns items in creation order, shaped only by skip/limit.
// A negative limit means no limit.
func (s *ItemService) ListItems(skip, limit int) ([]models.Item, error) {
	rows, err := s.db.Query(
		"SELECT id, title, description, price, quantity, owner_id FROM items ORDER BY id LIMIT ? OFFSET ?",
		limit, skip)
	if err != nil {
		return nil, err
	}
	return collectItems(rows)
}

// ListItemsByOwner returns the items owned by a single user, in creation order.
func (s *ItemService) ListItemsByOwner(ownerID int64, skip, limit int) ([]models.Item, error) {
	rows, err := s.db.Query(
		"SELECT id, title, description, price, quantity, owner_id FROM items WHERE owner_id = ? ORDER BY id LIMIT ? OFFSET ?",
		ownerID, limit, skip)
	if err != nil {
		return nil, err
	}
	return collectItems(rows)
}

func collectItems(rows *sql.Rows) ([]models.Item, error) {
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		var item models.Item
		var description sql.NullString
		if err := rows.Scan(&item.ID, &item.Title, &description, &item.Price, &item.Quantity, &item.OwnerID); err != nil {
			return nil, err
		}
		if description.Valid {
			item.Description = &description.String
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CreateItem inserts a new item owned by ownerID.
func (s *ItemService) CreateItem(in models.ItemCreate, ownerID int64) (*models.Item, error) {
	res, err := s.db.Exec(
		"INSERT INTO items(title, description, price, quantity, owner_id) VALUES(?, ?, ?, ?, ?)",
		in.Title, in.Description, *in.Price, in.Quantity, ownerID,
	)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Item{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Price:       *in.Price,
		Quantity:    in.Quantity,
		OwnerID:     ownerID,
	}, nil
}

// UpdateItem applies a partial update. Only the fields present in upd are
// written; an empty update is a no-op. Returns nil if the item does not exist.
// The owner reference is immutable and cannot be touched here.
func (s *ItemService) UpdateItem(id int64, upd models.ItemUpdate) (*models.Item, error) {
	var sets []string
	var args []any

	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *upd.Price)
	}
	if upd.Quantity != nil {
		sets = append(sets, "quantity = ?")
		args = append(args, *upd.Quantity)
	}

	if len(sets) > 0 {
		args = append(args, id)
		query := "UPDATE items SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		if _, err := s.db.Exec(query, args...); err != nil {
			return nil, err
		}
	}

	return s.GetItemByID(id)
}

// DeleteItem removes an item and returns its last state, nil if it was absent.
func (s *ItemService) DeleteItem(id int64) (*models.Item, error) {
	item, err := s.GetItemByID(id)
	if err != nil || item == nil {
		return nil, err
	}

	if _, err := s.db.Exec("DELETE FROM items WHERE id = ?", id); err != nil {
		return nil, err
	}
	return item, nil
}
