package mapi

// Folder permission rights as stored in the permission table.
const (
	RightsNone            uint32 = 0
	RightsReadAny         uint32 = 0x00000001
	RightsCreate          uint32 = 0x00000002
	RightsEditOwned       uint32 = 0x00000008
	RightsDeleteOwned     uint32 = 0x00000010
	RightsEditAny         uint32 = 0x00000020
	RightsDeleteAny       uint32 = 0x00000040
	RightsCreateSubfolder uint32 = 0x00000080
	RightsOwner           uint32 = 0x00000100
	RightsContact         uint32 = 0x00000200
	RightsVisible         uint32 = 0x00000400

	RightsAll = RightsReadAny | RightsCreate | RightsEditOwned | RightsDeleteOwned |
		RightsEditAny | RightsDeleteAny | RightsCreateSubfolder | RightsOwner |
		RightsContact | RightsVisible
)
