package live

import (
	"sync"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

const clientSendBuffer = 32

// Client is one live connection. Writes go through a bounded channel; a
// client whose buffer is full is skipped, never waited on.
type Client struct {
	userID kernel.UUID
	role   order.Role

	send      chan Envelope
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient creates a client for an authenticated connection.
func NewClient(userID kernel.UUID, role order.Role) *Client {
	return &Client{
		userID: userID,
		role:   role,
		send:   make(chan Envelope, clientSendBuffer),
		done:   make(chan struct{}),
	}
}

// UserID returns the authenticated user behind the connection.
func (c *Client) UserID() kernel.UUID {
	return c.userID
}

// Role returns the authenticated role behind the connection.
func (c *Client) Role() order.Role {
	return c.role
}

// TrySend queues an envelope without blocking. Returns false when the client
// is closed or its buffer is full; the message is dropped either way.
func (c *Client) TrySend(env Envelope) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- env:
		return true
	default:
		return false
	}
}

// Outbox returns the channel the write pump drains.
func (c *Client) Outbox() <-chan Envelope {
	return c.send
}

// Done is closed when the client shuts down.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close marks the client closed. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// ConnectionRegistry tracks live connections per user. One user may hold
// several connections at once.
type ConnectionRegistry struct {
	mu     sync.RWMutex
	byUser map[kernel.UUID]map[*Client]struct{}
}

// NewConnectionRegistry creates an empty registry.
func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{byUser: make(map[kernel.UUID]map[*Client]struct{})}
}

// Register adds a connection under its user identity.
func (r *ConnectionRegistry) Register(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clients, ok := r.byUser[client.userID]
	if !ok {
		clients = make(map[*Client]struct{})
		r.byUser[client.userID] = clients
	}
	clients[client] = struct{}{}
}

// Unregister removes a connection. The user's entry disappears with its last
// connection.
func (r *ConnectionRegistry) Unregister(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clients, ok := r.byUser[client.userID]
	if !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(r.byUser, client.userID)
	}
}

// ClientsOf returns the user's current connections.
func (r *ConnectionRegistry) ClientsOf(userID kernel.UUID) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*Client, 0, len(r.byUser[userID]))
	for client := range r.byUser[userID] {
		clients = append(clients, client)
	}
	return clients
}

// Count returns the number of users with at least one connection.
func (r *ConnectionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}

// TopicRouter tracks which connections watch which order.
type TopicRouter struct {
	mu       sync.RWMutex
	byOrder  map[kernel.UUID]map[*Client]struct{}
	byClient map[*Client]map[kernel.UUID]struct{}
}

// NewTopicRouter creates an empty router.
func NewTopicRouter() *TopicRouter {
	return &TopicRouter{
		byOrder:  make(map[kernel.UUID]map[*Client]struct{}),
		byClient: make(map[*Client]map[kernel.UUID]struct{}),
	}
}

// Subscribe adds the client to the order's topic.
func (t *TopicRouter) Subscribe(orderID kernel.UUID, client *Client) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subscribeLocked(orderID, client)
}

// SubscribeAndDeliver subscribes the client and runs deliver while broadcasts
// on the topic are held off, so whatever deliver enqueues reaches the client
// before any delta published after the subscription.
func (t *TopicRouter) SubscribeAndDeliver(orderID kernel.UUID, client *Client, deliver func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subscribeLocked(orderID, client)
	deliver()
}

func (t *TopicRouter) subscribeLocked(orderID kernel.UUID, client *Client) {
	subscribers, ok := t.byOrder[orderID]
	if !ok {
		subscribers = make(map[*Client]struct{})
		t.byOrder[orderID] = subscribers
	}
	subscribers[client] = struct{}{}

	topics, ok := t.byClient[client]
	if !ok {
		topics = make(map[kernel.UUID]struct{})
		t.byClient[client] = topics
	}
	topics[orderID] = struct{}{}
}

// Unsubscribe removes the client from the order's topic. Empty topics
// disappear.
func (t *TopicRouter) Unsubscribe(orderID kernel.UUID, client *Client) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.unsubscribeLocked(orderID, client)
}

// DropClient removes the client from every topic it watches.
func (t *TopicRouter) DropClient(client *Client) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for orderID := range t.byClient[client] {
		t.unsubscribeLocked(orderID, client)
	}
}

func (t *TopicRouter) unsubscribeLocked(orderID kernel.UUID, client *Client) {
	if subscribers, ok := t.byOrder[orderID]; ok {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(t.byOrder, orderID)
		}
	}
	if topics, ok := t.byClient[client]; ok {
		delete(topics, orderID)
		if len(topics) == 0 {
			delete(t.byClient, client)
		}
	}
}

// Subscribers returns the order topic's current clients.
func (t *TopicRouter) Subscribers(orderID kernel.UUID) []*Client {
	t.mu.RLock()
	defer t.mu.RUnlock()

	subscribers := make([]*Client, 0, len(t.byOrder[orderID]))
	for client := range t.byOrder[orderID] {
		subscribers = append(subscribers, client)
	}
	return subscribers
}

// ForEachSubscriber runs fn for every current subscriber while holding the
// topic lock, keeping the iteration atomic with subscription changes. fn
// must not block.
func (t *TopicRouter) ForEachSubscriber(orderID kernel.UUID, fn func(*Client)) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for client := range t.byOrder[orderID] {
		fn(client)
	}
}
