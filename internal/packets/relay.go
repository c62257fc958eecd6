package packets

// Relay transport message types.
const (
	RelayLoginType Type = 0x0301 + iota
	RelayLoginAckType
	RelayEnterPeerType
	RelayLeavePeerType
)

// RelayLoginResult is the relay login result code. The wire values are fixed.
type RelayLoginResult uint8

const (
	RelayLoginOK              RelayLoginResult = 0
	RelayLoginUnknownPlayer   RelayLoginResult = 1
	RelayLoginAlreadyOnline   RelayLoginResult = 2
	RelayLoginAddressMismatch RelayLoginResult = 3
	RelayLoginNotInRoom       RelayLoginResult = 4
)

type RelayLoginRequest struct {
	AccountID uint64 `json:"account_id"`
	RoomID    uint32 `json:"room_id"`
}

func (*RelayLoginRequest) PacketType() Type { return RelayLoginType }

type RelayLoginAck struct {
	Result RelayLoginResult `json:"result"`
}

func (*RelayLoginAck) PacketType() Type { return RelayLoginAckType }

// RelayEnterPeerAck announces a relay peer's identity. Sent to every existing
// member of a room's peer group when a new peer joins, and to the new peer
// once per existing member (plus once for itself).
type RelayEnterPeerAck struct {
	HostID    uint32 `json:"host_id"`
	AccountID uint64 `json:"account_id"`
	Nickname  string `json:"nickname"`
}

func (*RelayEnterPeerAck) PacketType() Type { return RelayEnterPeerType }

type RelayLeavePeerAck struct {
	HostID    uint32 `json:"host_id"`
	AccountID uint64 `json:"account_id"`
}

func (*RelayLeavePeerAck) PacketType() Type { return RelayLeavePeerType }

func init() {
	registerMessage(RelayLoginType, func() Message { return &RelayLoginRequest{} })
	registerMessage(RelayLoginAckType, func() Message { return &RelayLoginAck{} })
	registerMessage(RelayEnterPeerType, func() Message { return &RelayEnterPeerAck{} })
	registerMessage(RelayLeavePeerType, func() Message { return &RelayLeavePeerAck{} })
}
