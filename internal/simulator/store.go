package simulator

import (
	"sync"

	"github.com/google/uuid"
)

// OrderStore 内存订单簿，按提交顺序列出
type OrderStore struct {
	mu     sync.Mutex
	orders map[string]wireOrder
	seq    []string
}

// NewOrderStore 创建内存订单簿
func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[string]wireOrder)}
}

// Create 分配 ID 并保存
func (s *OrderStore) Create(o wireOrder) wireOrder {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	o.ID = &id
	s.orders[id] = o
	s.seq = append(s.seq, id)
	return o
}

// Cancel 删除订单，不存在时返回 false
func (s *OrderStore) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return false
	}
	delete(s.orders, id)
	for i, v := range s.seq {
		if v == id {
			s.seq = append(s.seq[:i], s.seq[i+1:]...)
			break
		}
	}
	return true
}

// List 全部订单
func (s *OrderStore) List() []wireOrder {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]wireOrder, 0, len(s.seq))
	for _, id := range s.seq {
		out = append(out, s.orders[id])
	}
	return out
}
