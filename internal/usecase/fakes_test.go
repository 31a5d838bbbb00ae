package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gamebit/internal/domain/entity"
	"gamebit/pkg/errors"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func (f *fakeUserRepo) put(user *entity.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *user
	f.users[user.ID] = &copied
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	f.put(user)
	return nil
}

func (f *fakeUserRepo) SetPresence(ctx context.Context, userID string, online bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return errors.NotFound("User", nil)
	}
	user.Online = online
	return nil
}

func (f *fakeUserRepo) ListPendingSellers(ctx context.Context) ([]*entity.User, error) {
	return f.filter(func(u *entity.User) bool {
		return u.Capabilities.Seller != nil && !u.Capabilities.Seller.Approved
	}), nil
}

func (f *fakeUserRepo) ListPendingEscrowAgents(ctx context.Context) ([]*entity.User, error) {
	return f.filter(func(u *entity.User) bool {
		return u.Capabilities.EscrowAgent != nil && !u.Capabilities.EscrowAgent.Approved
	}), nil
}

func (f *fakeUserRepo) ListApprovedEscrowAgents(ctx context.Context) ([]*entity.User, error) {
	return f.filter(func(u *entity.User) bool {
		return u.IsApprovedEscrowAgent()
	}), nil
}

func (f *fakeUserRepo) filter(keep func(*entity.User) bool) []*entity.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.User
	for _, u := range f.users {
		if keep(u) {
			copied := *u
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*entity.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]*entity.Product)}
}

func (f *fakeProductRepo) put(p *entity.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *p
	f.products[p.ID] = &copied
}

func (f *fakeProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, errors.NotFound("Product", nil)
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProductRepo) Create(ctx context.Context, p *entity.Product) error {
	f.put(p)
	return nil
}

func (f *fakeProductRepo) Update(ctx context.Context, p *entity.Product) error {
	f.put(p)
	return nil
}

type fakeTransactionRepo struct {
	mu   sync.Mutex
	txs  map[string]*entity.Transaction
	logs []*entity.TransactionLog
	seq  int
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{txs: make(map[string]*entity.Transaction)}
}

func (f *fakeTransactionRepo) Create(ctx context.Context, tx *entity.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tx.ID == "" {
		f.seq++
		tx.ID = fmt.Sprintf("tx-%d", f.seq)
	}
	now := time.Now()
	tx.CreatedAt = now
	tx.UpdatedAt = now
	copied := *tx
	f.txs[tx.ID] = &copied
	return nil
}

func (f *fakeTransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.txs[id]
	if !ok {
		return nil, errors.NotFound("Transaction", nil)
	}
	copied := *tx
	return &copied, nil
}

func (f *fakeTransactionRepo) Update(ctx context.Context, tx *entity.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx.UpdatedAt = time.Now()
	copied := *tx
	f.txs[tx.ID] = &copied
	return nil
}

func (f *fakeTransactionRepo) UpdateWithPrecondition(ctx context.Context, id string, allowed []string, mutate func(tx *entity.Transaction) error) (*entity.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tx, ok := f.txs[id]
	if !ok {
		return nil, errors.NotFound("Transaction", nil)
	}

	if len(allowed) > 0 {
		found := false
		for _, s := range allowed {
			if s == tx.Status {
				found = true
				break
			}
		}
		if !found {
			return nil, errors.InvalidState("Transaction is in status "+tx.Status, nil)
		}
	}

	copied := *tx
	if err := mutate(&copied); err != nil {
		return nil, err
	}
	copied.UpdatedAt = time.Now()
	f.txs[id] = &copied

	result := copied
	return &result, nil
}

func (f *fakeTransactionRepo) GetActiveByProductAndBuyer(ctx context.Context, productID, buyerID string) (*entity.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tx := range f.txs {
		if tx.ProductID == productID && tx.BuyerID == buyerID && !tx.IsTerminal() {
			copied := *tx
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeTransactionRepo) ListByParticipant(ctx context.Context, userID string, limit, offset int) ([]*entity.Transaction, int64, error) {
	return f.list(func(tx *entity.Transaction) bool { return tx.IsParticipant(userID) })
}

func (f *fakeTransactionRepo) ListByEscrowAgent(ctx context.Context, agentID string, limit, offset int) ([]*entity.Transaction, int64, error) {
	return f.list(func(tx *entity.Transaction) bool { return tx.EscrowAgentID == agentID })
}

func (f *fakeTransactionRepo) ListAll(ctx context.Context, limit, offset int) ([]*entity.Transaction, int64, error) {
	return f.list(func(tx *entity.Transaction) bool { return true })
}

func (f *fakeTransactionRepo) list(keep func(*entity.Transaction) bool) ([]*entity.Transaction, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Transaction
	for _, tx := range f.txs {
		if keep(tx) {
			copied := *tx
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeTransactionRepo) CreateLog(ctx context.Context, log *entity.TransactionLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	log.CreatedAt = time.Now()
	copied := *log
	f.logs = append(f.logs, &copied)
	return nil
}

func (f *fakeTransactionRepo) ListLogsByTransactionID(ctx context.Context, transactionID string) ([]*entity.TransactionLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.TransactionLog
	for _, log := range f.logs {
		if log.TransactionID == transactionID {
			copied := *log
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeChatRepo struct {
	mu       sync.Mutex
	chats    map[string]*entity.Chat
	messages map[string][]*entity.Message
	seq      int
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		chats:    make(map[string]*entity.Chat),
		messages: make(map[string][]*entity.Message),
	}
}

func (f *fakeChatRepo) Create(ctx context.Context, chat *entity.Chat) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if chat.ID == "" {
		f.seq++
		chat.ID = fmt.Sprintf("chat-%d", f.seq)
	}
	now := time.Now()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	copied := *chat
	f.chats[chat.ID] = &copied
	return nil
}

func (f *fakeChatRepo) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat, ok := f.chats[id]
	if !ok {
		return nil, errors.NotFound("Chat", nil)
	}
	copied := *chat
	return &copied, nil
}

func (f *fakeChatRepo) Update(ctx context.Context, chat *entity.Chat) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat.UpdatedAt = time.Now()
	copied := *chat
	f.chats[chat.ID] = &copied
	return nil
}

func (f *fakeChatRepo) FindByKey(ctx context.Context, participantsKey, transactionID, productID string) (*entity.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, chat := range f.chats {
		if chat.ParticipantsKey == participantsKey &&
			chat.TransactionID == transactionID &&
			chat.ProductID == productID {
			copied := *chat
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeChatRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Chat, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Chat
	for _, chat := range f.chats {
		if chat.HasParticipant(userID) {
			copied := *chat
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeChatRepo) CreateMessage(ctx context.Context, chatID string, msg *entity.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg.ID == "" {
		f.seq++
		msg.ID = fmt.Sprintf("msg-%d", f.seq)
	}
	msg.ChatID = chatID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	copied := *msg
	f.messages[chatID] = append(f.messages[chatID], &copied)
	return nil
}

func (f *fakeChatRepo) ListMessages(ctx context.Context, chatID string, limit, offset int) ([]*entity.Message, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages[chatID]
	out := make([]*entity.Message, 0, len(msgs))
	for _, m := range msgs {
		copied := *m
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (f *fakeChatRepo) MarkMessagesRead(ctx context.Context, chatID, readerID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	count := 0
	for _, m := range f.messages[chatID] {
		if m.SenderID != readerID && !m.Read {
			m.Read = true
			m.ReadAt = &now
			count++
		}
	}
	return count, nil
}

type broadcastCall struct {
	chatID string
	data   []byte
	except string
}

type fakeGateway struct {
	mu         sync.Mutex
	broadcasts []broadcastCall
	direct     map[string][][]byte
	online     map[string]bool
	typing     map[string]map[string]bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		direct: make(map[string][][]byte),
		online: make(map[string]bool),
		typing: make(map[string]map[string]bool),
	}
}

func (f *fakeGateway) BroadcastToRoom(chatID string, payload []byte, exceptConnID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, broadcastCall{chatID: chatID, data: payload, except: exceptConnID})
}

func (f *fakeGateway) SendToUser(userID string, payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.direct[userID] = append(f.direct[userID], payload)
}

func (f *fakeGateway) IsOnline(userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.online[userID]
}

func (f *fakeGateway) SetTyping(chatID, userID string, isTyping bool) time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.typing[chatID] == nil {
		f.typing[chatID] = make(map[string]bool)
	}
	f.typing[chatID][userID] = isTyping
	if !isTyping {
		return time.Time{}
	}
	return time.Now().Add(3 * time.Second)
}

func (f *fakeGateway) broadcastCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.broadcasts)
}

func (f *fakeGateway) lastBroadcast() (broadcastCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.broadcasts) == 0 {
		return broadcastCall{}, false
	}
	return f.broadcasts[len(f.broadcasts)-1], true
}
