package repos

import (
	"github.com/jmoiron/sqlx"

	"shinejewelry/internal/domain"
)

const (
	StatusPlaced  = "PLACED"
	StatusPending = "PENDING_CONFIRMATION"
	StatusConfirm = "CONFIRMED"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

func (r *OrderRepo) Save(id, ref, status string, ord domain.OrderRequest) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		INSERT INTO orders(id, ref, customer_name, customer_email, customer_phone,
		  customer_address, customer_city, customer_governorate, payment_type, shipping, total, status)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`,
		id, ref, ord.Customer.Name, ord.Customer.Email, ord.Customer.Phone,
		ord.Customer.Address, ord.Customer.City, ord.Customer.Governorate,
		ord.PaymentType, ord.Shipping, ord.Total, status); err != nil {
		return err
	}
	for _, it := range ord.Items {
		if _, err := tx.Exec(`
			INSERT INTO order_items(order_id, product_id, title, qty, price)
			VALUES(?,?,?,?,?)`, id, it.ID, it.Title, it.Qty, it.Price); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *OrderRepo) SetStatus(id, status string) error {
	_, err := r.db.Exec(`UPDATE orders SET status=? WHERE id=?`, status, id)
	return err
}

// Status looks up an order by its customer-facing ref.
func (r *OrderRepo) Status(ref string) (string, error) {
	var s string
	err := r.db.Get(&s, `SELECT status FROM orders WHERE ref=?`, ref)
	return s, err
}
