package domain

const (
	PaymentCOD      = "COD"
	PaymentInstapay = "Instapay"
)

type Customer struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Governorate string `json:"governorate"`
}

type OrderItem struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Qty   int     `json:"qty"`
	Img   string  `json:"img"`
}

type OrderRequest struct {
	Customer    Customer    `json:"customer"`
	Items       []OrderItem `json:"items"`
	Total       float64     `json:"total"`
	PaymentType string      `json:"paymentType"`
	Shipping    float64     `json:"shipping"`
}

type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}
