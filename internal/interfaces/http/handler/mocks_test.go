package handler

import (
	"context"
	"io"

	"github.com/google/uuid"
	clientapp "github.com/invoicer/backend/internal/application/client"
	invoiceapp "github.com/invoicer/backend/internal/application/invoice"
	profileapp "github.com/invoicer/backend/internal/application/profile"
	taskapp "github.com/invoicer/backend/internal/application/task"
	"github.com/invoicer/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/mock"
)

// MockClientService implements ClientService for testing
type MockClientService struct {
	mock.Mock
}

func (m *MockClientService) Create(ctx context.Context, tenantID uuid.UUID, req clientapp.CreateClientRequest) (*clientapp.ClientResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clientapp.ClientResponse), args.Error(1)
}

func (m *MockClientService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*clientapp.ClientResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clientapp.ClientResponse), args.Error(1)
}

func (m *MockClientService) List(ctx context.Context, tenantID uuid.UUID, filter clientapp.ClientListFilter) ([]clientapp.ClientResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]clientapp.ClientResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockClientService) Update(ctx context.Context, tenantID, id uuid.UUID, req clientapp.UpdateClientRequest) (*clientapp.ClientResponse, error) {
	args := m.Called(ctx, tenantID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clientapp.ClientResponse), args.Error(1)
}

func (m *MockClientService) Archive(ctx context.Context, tenantID, id uuid.UUID) (*clientapp.ClientResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clientapp.ClientResponse), args.Error(1)
}

func (m *MockClientService) Remove(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

// MockTaskService implements TaskService and UnbilledTaskLister for testing
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) Create(ctx context.Context, tenantID uuid.UUID, req taskapp.CreateTaskRequest) (*taskapp.TaskResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taskapp.TaskResponse), args.Error(1)
}

func (m *MockTaskService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*taskapp.TaskResponse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taskapp.TaskResponse), args.Error(1)
}

func (m *MockTaskService) List(ctx context.Context, tenantID uuid.UUID, filter taskapp.TaskListFilter) ([]taskapp.TaskResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]taskapp.TaskResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockTaskService) Update(ctx context.Context, tenantID, id uuid.UUID, req taskapp.UpdateTaskRequest) (*taskapp.TaskResponse, error) {
	args := m.Called(ctx, tenantID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taskapp.TaskResponse), args.Error(1)
}

func (m *MockTaskService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockTaskService) GetRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]taskapp.TaskResponse, error) {
	args := m.Called(ctx, tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]taskapp.TaskResponse), args.Error(1)
}

func (m *MockTaskService) GetUnbilledByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]taskapp.TaskResponse, error) {
	args := m.Called(ctx, tenantID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]taskapp.TaskResponse), args.Error(1)
}

func (m *MockTaskService) GetDashboardStats(ctx context.Context, tenantID uuid.UUID) (*taskapp.DashboardStats, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taskapp.DashboardStats), args.Error(1)
}

// MockInvoiceService implements InvoiceService for testing
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) invoice(args mock.Arguments) (*invoiceapp.InvoiceResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoiceapp.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceService) Create(ctx context.Context, tenantID uuid.UUID, req invoiceapp.CreateInvoiceRequest) (*invoiceapp.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, tenantID, req))
}

func (m *MockInvoiceService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*invoiceapp.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, tenantID, id))
}

func (m *MockInvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter invoiceapp.InvoiceListFilter) ([]invoiceapp.InvoiceResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]invoiceapp.InvoiceResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceService) Update(ctx context.Context, tenantID, id uuid.UUID, req invoiceapp.UpdateInvoiceRequest) (*invoiceapp.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, tenantID, id, req))
}

func (m *MockInvoiceService) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) (*invoiceapp.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, tenantID, id, status))
}

func (m *MockInvoiceService) MarkAsPaid(ctx context.Context, tenantID, id uuid.UUID) (*invoiceapp.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, tenantID, id))
}

func (m *MockInvoiceService) Send(ctx context.Context, tenantID, id uuid.UUID, req invoiceapp.SendInvoiceRequest) (*invoiceapp.InvoiceResponse, error) {
	return m.invoice(m.Called(ctx, tenantID, id, req))
}

func (m *MockInvoiceService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockInvoiceService) RenderPDF(ctx context.Context, tenantID, id uuid.UUID) ([]byte, string, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

// MockProfileService implements ProfileService for testing
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Get(ctx context.Context, tenantID uuid.UUID) (*profileapp.ProfileResponse, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profileapp.ProfileResponse), args.Error(1)
}

func (m *MockProfileService) Update(ctx context.Context, tenantID uuid.UUID, req profileapp.UpdateProfileRequest) (*profileapp.ProfileResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profileapp.ProfileResponse), args.Error(1)
}

func (m *MockProfileService) UploadLogo(ctx context.Context, tenantID uuid.UUID, filename, contentType string, r io.Reader, size int64) (*profileapp.ProfileResponse, error) {
	data, _ := io.ReadAll(r)
	args := m.Called(ctx, tenantID, filename, contentType, data, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profileapp.ProfileResponse), args.Error(1)
}

type fakeHealthDB struct {
	pingErr error
	stats   persistence.ConnectionStats
}

func (p *fakeHealthDB) Ping(context.Context) error { return p.pingErr }

func (p *fakeHealthDB) Stats() (persistence.ConnectionStats, error) { return p.stats, nil }
