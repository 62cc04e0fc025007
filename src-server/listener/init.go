// Package listener reacts to gateway events that aren't interactions.
package listener

import "guildbot/src-server/utils"

func Init(as *utils.AppState) {
	as.DgSession.AddHandler(memberAdd(as))
	as.DgSession.AddHandler(memberRemove(as))
	as.DgSession.AddHandler(messageCreate(as))
	as.DgSession.AddHandler(messageDelete(as))
}
