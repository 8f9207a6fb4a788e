// services/rotation.go
//
// Doubles rotation resolver: a pure derivation of who serves from where and
// who receives diagonally, per BWF doubles service rules. Queried by the
// rotation endpoint and the score-only overlay; never mutates anything.
package services

import "badminton-score-system/models"

type CourtSide string

const (
	CourtLeft  CourtSide = "left"
	CourtRight CourtSide = "right"
)

type Lane string

const (
	LaneTop    Lane = "top"
	LaneBottom Lane = "bottom"
)

// TeamColumn describes one side of the court diagram: which partner stands in
// each service box and which box is highlighted for serve or receipt.
type TeamColumn struct {
	TeamID        models.PlayerID `json:"teamId"`
	TeamName      string          `json:"teamName"`
	Role          string          `json:"role"` // "server" or "receiver"
	TopName       string          `json:"topName"`
	BottomName    string          `json:"bottomName"`
	HighlightLane Lane            `json:"highlightLane"`
}

// RotationSummary is the full serve/receive picture for the current rally.
type RotationSummary struct {
	ServingTeam       models.PlayerID `json:"servingTeam"`
	ServingTeamName   string          `json:"servingTeamName"`
	ServiceCourt      CourtSide       `json:"serviceCourt"` // right on even points, left on odd
	ServingPartner    string          `json:"servingPartner"`
	ReceivingTeam     models.PlayerID `json:"receivingTeam"`
	ReceivingTeamName string          `json:"receivingTeamName"`
	ReceivingPartner  string          `json:"receivingPartner"`
	Columns           []TeamColumn    `json:"columns"` // left column first
}

// serviceBox: even score serves from the right court, odd from the left.
func serviceBox(points int) CourtSide {
	if points%2 == 0 {
		return CourtRight
	}
	return CourtLeft
}

// laneForSide maps a service box to a diagram lane, mirrored between the two
// columns so the diagonal reads correctly with the net in the middle.
func laneForSide(box CourtSide, isLeftSide bool) Lane {
	if isLeftSide {
		if box == CourtRight {
			return LaneBottom
		}
		return LaneTop
	}
	if box == CourtRight {
		return LaneTop
	}
	return LaneBottom
}

func flipLane(lane Lane) Lane {
	if lane == LaneTop {
		return LaneBottom
	}
	return LaneTop
}

// rightCourtMate is the partner currently mapped to the right-court serving
// slot, defaulting to the first teammate.
func rightCourtMate(team models.PlayerState, serverMap map[models.PlayerID]string) models.TeammateState {
	if len(team.Teammates) == 0 {
		return models.TeammateState{}
	}
	if currentRightID, ok := serverMap[team.ID]; ok {
		for _, mate := range team.Teammates {
			if mate.ID == currentRightID {
				return mate
			}
		}
	}
	return team.Teammates[0]
}

// laneMates orders a team's partners into top/bottom lanes: the right-court
// partner (per the teammate server map) sits bottom on the left side and top
// on the right side.
func laneMates(team models.PlayerState, serverMap map[models.PlayerID]string, isLeftSide bool) (top, bottom models.TeammateState) {
	if len(team.Teammates) == 0 {
		return models.TeammateState{}, models.TeammateState{}
	}

	rightMate := rightCourtMate(team, serverMap)

	leftMate := rightMate
	for _, mate := range team.Teammates {
		if mate.ID != rightMate.ID {
			leftMate = mate
			break
		}
	}

	if isLeftSide {
		return leftMate, rightMate
	}
	return rightMate, leftMate
}

// displayName falls back to the team name while a partner is unnamed.
func displayName(mate models.TeammateState, team models.PlayerState) string {
	if mate.Name != "" {
		return mate.Name
	}
	return team.Name
}

// ResolveRotation derives the serve/receive summary from the player order,
// the current server and the right-court assignments.
func ResolveRotation(players []models.PlayerState, server models.PlayerID, serverMap map[models.PlayerID]string) RotationSummary {
	leftTeam := players[0]
	rightTeam := players[1]

	serverTeam := leftTeam
	receiverTeam := rightTeam
	serverOnLeft := true
	if rightTeam.ID == server {
		serverTeam, receiverTeam = rightTeam, leftTeam
		serverOnLeft = false
	}

	box := serviceBox(serverTeam.Points)
	serverLane := laneForSide(box, serverOnLeft)
	receiverLane := flipLane(serverLane)

	leftTop, leftBottom := laneMates(leftTeam, serverMap, true)
	rightTop, rightBottom := laneMates(rightTeam, serverMap, false)

	columns := []TeamColumn{
		{
			TeamID:     leftTeam.ID,
			TeamName:   leftTeam.Name,
			TopName:    displayName(leftTop, leftTeam),
			BottomName: displayName(leftBottom, leftTeam),
		},
		{
			TeamID:     rightTeam.ID,
			TeamName:   rightTeam.Name,
			TopName:    displayName(rightTop, rightTeam),
			BottomName: displayName(rightBottom, rightTeam),
		},
	}
	if serverOnLeft {
		columns[0].Role, columns[0].HighlightLane = "server", serverLane
		columns[1].Role, columns[1].HighlightLane = "receiver", receiverLane
	} else {
		columns[0].Role, columns[0].HighlightLane = "receiver", receiverLane
		columns[1].Role, columns[1].HighlightLane = "server", serverLane
	}

	// The serving partner is whoever occupies the right-court slot; the
	// receiving partner is whoever stands in the diagonally opposite box.
	servingMate := rightCourtMate(serverTeam, serverMap)

	receivingTop, receivingBottom := laneMates(receiverTeam, serverMap, !serverOnLeft)
	receivingMate := receivingTop
	if receiverLane == LaneBottom {
		receivingMate = receivingBottom
	}

	return RotationSummary{
		ServingTeam:       serverTeam.ID,
		ServingTeamName:   serverTeam.Name,
		ServiceCourt:      box,
		ServingPartner:    displayName(servingMate, serverTeam),
		ReceivingTeam:     receiverTeam.ID,
		ReceivingTeamName: receiverTeam.Name,
		ReceivingPartner:  displayName(receivingMate, receiverTeam),
		Columns:           columns,
	}
}
