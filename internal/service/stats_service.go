package service

import (
	"context"

	"freshbasket-backend/internal/dto"
	"freshbasket-backend/internal/model"
)

// Contadores que el tablero de admin necesita; los implementan los
// repositorios Mongo con CountDocuments y pipelines de agregación.

type UserCounter interface {
	Count(ctx context.Context) (int64, error)
	CountBusiness(ctx context.Context) (int64, error)
}

type ProductCounter interface {
	Count(ctx context.Context) (int64, error)
}

type OrderCounter interface {
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status model.OrderStatus) (int64, error)
	CountWithScheduledDeliveries(ctx context.Context) (int64, error)
	SumDeliveredTotals(ctx context.Context) (float64, error)
}

type BusinessOrderCounter interface {
	Count(ctx context.Context) (int64, error)
	SumQuotedAmounts(ctx context.Context) (float64, error)
	SumDeliveredAmounts(ctx context.Context) (float64, error)
}

type StatsService struct {
	users          UserCounter
	products       ProductCounter
	orders         OrderCounter
	businessOrders BusinessOrderCounter
}

func NewStatsService(users UserCounter, products ProductCounter, orders OrderCounter, businessOrders BusinessOrderCounter) *StatsService {
	return &StatsService{users: users, products: products, orders: orders, businessOrders: businessOrders}
}

func (s *StatsService) GetStats(ctx context.Context) (*dto.StatsResponse, error) {
	var out dto.StatsResponse
	var err error

	if out.Users.Total, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	if out.Users.BusinessUsers, err = s.users.CountBusiness(ctx); err != nil {
		return nil, err
	}
	if out.Inventory.Products, err = s.products.Count(ctx); err != nil {
		return nil, err
	}

	if out.Orders.Total, err = s.orders.Count(ctx); err != nil {
		return nil, err
	}
	if out.Orders.Scheduled, err = s.orders.CountWithScheduledDeliveries(ctx); err != nil {
		return nil, err
	}
	if out.Orders.Processing, err = s.orders.CountByStatus(ctx, model.OrderProcessing); err != nil {
		return nil, err
	}
	if out.Orders.Delivered, err = s.orders.CountByStatus(ctx, model.OrderDelivered); err != nil {
		return nil, err
	}
	if out.Orders.Canceled, err = s.orders.CountByStatus(ctx, model.OrderCanceled); err != nil {
		return nil, err
	}

	if out.BusinessOrders.Total, err = s.businessOrders.Count(ctx); err != nil {
		return nil, err
	}
	if out.BusinessOrders.QuotedAmount, err = s.businessOrders.SumQuotedAmounts(ctx); err != nil {
		return nil, err
	}

	ordersIncome, err := s.orders.SumDeliveredTotals(ctx)
	if err != nil {
		return nil, err
	}
	businessIncome, err := s.businessOrders.SumDeliveredAmounts(ctx)
	if err != nil {
		return nil, err
	}
	out.Finance.TotalIncome = ordersIncome + businessIncome

	return &out, nil
}
