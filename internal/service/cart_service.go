package service

import (
	"context"
	"errors"

	"freshbasket-backend/internal/dto"
	"freshbasket-backend/internal/model"
	"freshbasket-backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrProductNotFound  = errors.New("producto no encontrado")
	ErrInvalidVariation = errors.New("variación inválida")
	ErrItemNotFound     = errors.New("ítem no encontrado en el carrito")
)

type CartService struct {
	carts    CartRepository
	products ProductRepository
}

func NewCartService(carts CartRepository, products ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

// GetCart devuelve el carrito del usuario, o uno vacío si todavía no existe.
// Solo la ausencia se traduce a carrito vacío; una falla de storage se propaga.
func (s *CartService) GetCart(ctx context.Context, userID primitive.ObjectID) (*model.Cart, error) {
	cart, err := s.carts.FindByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return &model.Cart{UserID: userID, Items: []model.CartItem{}, Total: 0}, nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddToCart agrega una variación de un producto. La variación se copia
// entera al ítem: si el precio del catálogo cambia después, el carrito
// conserva el precio al que se agregó.
func (s *CartService) AddToCart(ctx context.Context, userID primitive.ObjectID, req dto.AddToCartRequest) (*model.Cart, error) {
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return nil, ErrProductNotFound
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if req.VariationIndex < 0 || req.VariationIndex >= len(product.Variations) {
		return nil, ErrInvalidVariation
	}
	variation := product.Variations[req.VariationIndex]

	cart, err := s.carts.FindByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		// Primer ítem: se crea el carrito.
		cart = &model.Cart{
			UserID: userID,
			Items: []model.CartItem{{
				ID:        primitive.NewObjectID(),
				ProductID: productID,
				Variation: variation,
				Quantity:  req.Quantity,
			}},
		}
		cart.RecomputeTotal()
		if err := s.carts.Create(ctx, cart); err != nil {
			return nil, err
		}
		return cart, nil
	}

	// Mismo producto y misma presentación ⇒ se suma la cantidad.
	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID && cart.Items[i].Variation.Weight == variation.Weight {
			cart.Items[i].Quantity += req.Quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, model.CartItem{
			ID:        primitive.NewObjectID(),
			ProductID: productID,
			Variation: variation,
			Quantity:  req.Quantity,
		})
	}

	cart.RecomputeTotal()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) UpdateItem(ctx context.Context, userID primitive.ObjectID, req dto.UpdateCartItemRequest) (*model.Cart, error) {
	cart, err := s.carts.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	itemID, err := primitive.ObjectIDFromHex(req.ItemID)
	if err != nil {
		return nil, ErrItemNotFound
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items[i].Quantity = req.Quantity
			found = true
			break
		}
	}
	if !found {
		return nil, ErrItemNotFound
	}

	cart.RecomputeTotal()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) DeleteItem(ctx context.Context, userID primitive.ObjectID, itemIDHex string) (*model.Cart, error) {
	cart, err := s.carts.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	itemID, err := primitive.ObjectIDFromHex(itemIDHex)
	if err != nil {
		return nil, ErrItemNotFound
	}

	kept := cart.Items[:0]
	removed := false
	for _, it := range cart.Items {
		if it.ID == itemID {
			removed = true
			continue
		}
		kept = append(kept, it)
	}
	if !removed {
		return nil, ErrItemNotFound
	}
	cart.Items = kept

	cart.RecomputeTotal()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}
