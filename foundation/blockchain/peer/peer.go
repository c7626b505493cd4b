// Package peer maintains the set of nodes this node knows about and
// exchanges chains with.
package peer

import (
	"sort"
	"sync"
)

// Peer represents a node in the network, addressed by the host:port of
// its private API.
type Peer struct {
	Host string `json:"host" validate:"required,hostname_port"`
}

// New constructs a new peer value.
func New(host string) Peer {
	return Peer{
		Host: host,
	}
}

// Match validates if the specified host matches this peer.
func (p Peer) Match(host string) bool {
	return p.Host == host
}

// =============================================================================

// Status represents what a node reports about itself to the network.
type Status struct {
	LatestBlockHash   string `json:"latestBlockHash"`
	LatestBlockNumber uint64 `json:"latestBlockNumber"`
	KnownPeers        []Peer `json:"knownPeers"`
}

// =============================================================================

// PeerSet represents the data representation to maintain a set of known peers.
type PeerSet struct {
	mu  sync.RWMutex
	set map[Peer]struct{}
}

// NewPeerSet constructs a new set, seeded with the specified peers.
func NewPeerSet(peers ...Peer) *PeerSet {
	ps := PeerSet{
		set: make(map[Peer]struct{}, len(peers)),
	}

	for _, peer := range peers {
		ps.set[peer] = struct{}{}
	}

	return &ps
}

// Add adds a peer to the set. It returns false when an equal peer is
// already known.
func (ps *PeerSet) Add(peer Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, exists := ps.set[peer]; exists {
		return false
	}

	ps.set[peer] = struct{}{}

	return true
}

// Remove removes a peer from the set.
func (ps *PeerSet) Remove(peer Peer) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.set, peer)
}

// Copy returns the known peers sorted by host, leaving out the peer that
// matches the specified host so a node never syncs with itself.
func (ps *PeerSet) Copy(host string) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	peers := make([]Peer, 0, len(ps.set))
	for peer := range ps.set {
		if !peer.Match(host) {
			peers = append(peers, peer)
		}
	}

	sort.Slice(peers, func(i, j int) bool {
		return peers[i].Host < peers[j].Host
	})

	return peers
}
