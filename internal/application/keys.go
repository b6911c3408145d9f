package application

import "github.com/mvoss/teampulse-cli/internal/domain"

// Namespace versions every persisted key. The sync bridge scans for this
// prefix, so changing it is a breaking change to the storage contract.
const Namespace = "pulse:v1"

func teamsKey() string {
	return Namespace + ":teams"
}

func usersKey(teamID domain.TeamID) string {
	return Namespace + ":users:" + string(teamID)
}

func sessionKey(ref domain.RunRef) string {
	return sessionPrefix(ref.TeamID, ref.UserID) + string(ref.RunID)
}

func sessionPrefix(teamID domain.TeamID, userID domain.UserID) string {
	return Namespace + ":sessions:" + string(teamID) + ":" + string(userID) + ":"
}

func allSessionsPrefix() string {
	return Namespace + ":sessions:"
}

func lastSessionKey(teamID domain.TeamID, userID domain.UserID) string {
	return Namespace + ":lastSession:" + string(teamID) + ":" + string(userID)
}

func allLastSessionsPrefix() string {
	return Namespace + ":lastSession:"
}

func currentSessionKey() string {
	return Namespace + ":currentSession"
}
