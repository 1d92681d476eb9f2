package repo

import (
	"fmt"
	"strings"
)

// Key layout. Primary records live under their own id; secondary indexes
// are plain keys whose value is the id they point at.
//
//	user:{id}                       serialized User
//	email-index:{email}             user id, uniqueness claim for the email
//	users                           set of all user ids
//	url:{id}                        serialized ShortURL
//	code-index:{code}               url id, uniqueness claim for the code
//	owner-urls:{ownerId}            set of url ids owned by a user
//	url-stats:{id}                  hash of atomic counters (field "clicks")
//	url-clicks:{id}:{seq}           one serialized ClickDetail per click
const (
	userKeyPrefix   = "user:"
	emailIndexKey   = "email-index:"
	usersSetKey     = "users"
	urlKeyPrefix    = "url:"
	codeIndexPrefix = "code-index:"
	ownerURLsPrefix = "owner-urls:"
	urlStatsPrefix  = "url-stats:"
	urlClicksPrefix = "url-clicks:"

	clicksField = "clicks"
)

func userKey(id string) string { return userKeyPrefix + id }
func emailKey(email string) string {
	return emailIndexKey + strings.ToLower(strings.TrimSpace(email))
}
func urlKey(id string) string { return urlKeyPrefix + id }
func codeKey(code string) string { return codeIndexPrefix + code }
func ownerKey(ownerID string) string { return ownerURLsPrefix + ownerID }
func statsKey(urlID string) string { return urlStatsPrefix + urlID }

// clickKey zero-pads the sequence so KeysByPrefix returns clicks in
// insertion order under lexicographic sorting.
func clickKey(urlID string, seq int64) string {
	return fmt.Sprintf("%s%s:%012d", urlClicksPrefix, urlID, seq)
}

func clickLogPrefix(urlID string) string {
	return urlClicksPrefix + urlID + ":"
}
