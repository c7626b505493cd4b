package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ardanlabs/fiatlux/foundation/blockchain/database"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/peer"
)

const baseURL = "http://%s/v1/node"

// client is shared by every request made to peers.
var client = http.Client{
	Timeout: 10 * time.Second,
}

// NetSendChainToPeers proposes the local chain to all known peers so they
// can run consensus against it.
func (s *State) NetSendChainToPeers() {
	s.evHandler("state: NetSendChainToPeers: started")
	defer s.evHandler("state: NetSendChainToPeers: completed")

	blocks := s.RetrieveBlocks()

	for _, pr := range s.RetrieveKnownPeers() {
		url := fmt.Sprintf("%s/chain/propose", fmt.Sprintf(baseURL, pr.Host))

		var resp struct {
			Adopted bool `json:"adopted"`
		}

		if err := send(http.MethodPost, url, blocks, &resp); err != nil {
			s.evHandler("state: NetSendChainToPeers: peer[%s]: WARNING: %s", pr.Host, err)
			continue
		}

		s.evHandler("state: NetSendChainToPeers: sent to peer[%s]: adopted[%v]", pr.Host, resp.Adopted)
	}
}

// NetRequestPeerStatus asks the peer for its latest block and the list of
// peers it knows about.
func (s *State) NetRequestPeerStatus(pr peer.Peer) (peer.Status, error) {
	s.evHandler("state: NetRequestPeerStatus: started: %s", pr.Host)
	defer s.evHandler("state: NetRequestPeerStatus: completed: %s", pr.Host)

	url := fmt.Sprintf("%s/status", fmt.Sprintf(baseURL, pr.Host))

	var ps peer.Status
	if err := send(http.MethodGet, url, nil, &ps); err != nil {
		return peer.Status{}, err
	}

	s.evHandler("state: NetRequestPeerStatus: peer-node[%s]: latest-blknum[%d]: peer-list[%v]", pr.Host, ps.LatestBlockNumber, ps.KnownPeers)

	return ps, nil
}

// NetRequestPeerChain retrieves the full chain held by the peer.
func (s *State) NetRequestPeerChain(pr peer.Peer) ([]database.Block, error) {
	s.evHandler("state: NetRequestPeerChain: started: %s", pr.Host)
	defer s.evHandler("state: NetRequestPeerChain: completed: %s", pr.Host)

	url := fmt.Sprintf("%s/chain", fmt.Sprintf(baseURL, pr.Host))

	var blocks []database.Block
	if err := send(http.MethodGet, url, nil, &blocks); err != nil {
		return nil, err
	}

	s.evHandler("state: NetRequestPeerChain: peer-node[%s]: found blocks[%d]", pr.Host, len(blocks))

	return blocks, nil
}

// NetRequestAddPeer lets the peer know this node exists.
func (s *State) NetRequestAddPeer(pr peer.Peer) error {
	s.evHandler("state: NetRequestAddPeer: started: %s", pr.Host)
	defer s.evHandler("state: NetRequestAddPeer: completed: %s", pr.Host)

	url := fmt.Sprintf("%s/peers", fmt.Sprintf(baseURL, pr.Host))

	return send(http.MethodPost, url, peer.New(s.host), nil)
}

// =============================================================================

// send is a helper function to send an HTTP request to a node.
func send(method string, url string, dataSend any, dataRecv any) error {
	var body io.Reader
	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return errors.New(string(msg))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}
