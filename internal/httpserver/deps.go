package httpserver

import (
	"context"
	"io"

	"colognehub/internal/domain"
	"colognehub/internal/importer"
	"colognehub/internal/notify"
	"colognehub/internal/service/admin"
	"colognehub/internal/service/auth"
	"colognehub/internal/service/cart"
	"colognehub/internal/service/catalog"
	"colognehub/internal/service/checkout"
	"colognehub/internal/service/order"
	"colognehub/internal/session"
)

// Deps are the services the routes delegate to.
type Deps struct {
	Session       sessionReader
	Catalog       catalogService
	Cart          cartService
	Wishlist      wishlistService
	Checkout      checkoutService
	Auth          authService
	Orders        orderService
	Admin         adminService
	Notifications notificationQueue
	// Ready reports backing store health for /readyz. Nil means always ready.
	Ready func(ctx context.Context) error
}

type sessionReader interface {
	Snapshot(ctx context.Context) (session.Snapshot, error)
}

type catalogService interface {
	Refresh(ctx context.Context) error
	Product(id string) (domain.Product, error)
	View() *catalog.View
}

type cartService interface {
	Load(ctx context.Context) ([]cart.Line, error)
	Lines() []cart.Line
	Count() int
	Add(ctx context.Context, productID string, quantity int) (bool, error)
	UpdateQuantity(ctx context.Context, productID string, quantity int) error
	Remove(ctx context.Context, productID string) error
}

type wishlistService interface {
	Load(ctx context.Context) ([]domain.WishlistEntry, error)
	Toggle(ctx context.Context, productID string) (bool, error)
	Contains(productID string) bool
	MoveToCart(ctx context.Context, productID string) error
}

type checkoutService interface {
	Totals() checkout.Totals
	ApplyPromo(code string) (checkout.Promo, error)
	RemovePromo()
	Promo() checkout.PromoState
	PlaceOrder(ctx context.Context, in checkout.PlaceOrderInput) (*domain.Order, error)
}

type authService interface {
	Login(ctx context.Context, in auth.LoginInput) (auth.LoginResult, error)
	Register(ctx context.Context, in auth.RegisterInput) (string, error)
	Logout(ctx context.Context) error
	Session(ctx context.Context) (session.Snapshot, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, in auth.ResetPasswordInput) (string, error)
	VerifyEmail(ctx context.Context, token string) (string, error)
}

type orderService interface {
	Track(ctx context.Context, orderID string) (order.Tracking, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListAll(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error)
}

type adminService interface {
	Products(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, p domain.Product) error
	UpdateProduct(ctx context.Context, p domain.Product) error
	DeleteProduct(ctx context.Context, productID string) error
	Inventory(ctx context.Context, lowOnly bool) ([]admin.InventoryItem, error)
	AdjustStock(ctx context.Context, productID string, quantity int) error
	Brands(ctx context.Context) ([]domain.Brand, error)
	SaveBrand(ctx context.Context, b domain.Brand) error
	DeleteBrand(ctx context.Context, id string) error
	Users(ctx context.Context, role string) ([]domain.User, error)
	Subscribers(ctx context.Context) ([]domain.Subscriber, error)
	DeleteSubscriber(ctx context.Context, id string) error
	ExportSubscribers(ctx context.Context, w io.Writer) (int, error)
	BulkUpload(ctx context.Context, filename string, data []byte) (admin.UploadResult, error)
	BulkDownload(ctx context.Context) ([]byte, error)
	ExportProducts(ctx context.Context, w io.Writer, format importer.Format) (int, error)
	Dashboard(ctx context.Context) (admin.Dashboard, error)
}

type notificationQueue interface {
	List() []notify.Notification
	Remove(id string) bool
}
