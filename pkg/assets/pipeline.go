package assets

import (
	"fmt"

	"github.com/matchscope/matchscope/internal/utils"
	"github.com/matchscope/matchscope/pkg/match"
)

// AvatarService renders group avatars. Satisfied by *AvatarClient.
type AvatarService interface {
	CreateAvatar(m match.Match) ([]byte, error)
}

// Uploader stores generated files. Satisfied by *DriveClient.
type Uploader interface {
	Upload(fileName string, content []byte, folderPath, mimeType string) (string, error)
}

// Result collects the upload URLs for one processed match.
type Result struct {
	MatchID        match.ID
	DescriptionURL string
	GroupInfoURL   string
	AvatarURL      string
}

// Pipeline generates and uploads the asset set for new and updated matches.
type Pipeline struct {
	Avatars        AvatarService
	Drive          Uploader
	FolderBase     string
	MatchFactsBase string
	MinReferees    int
}

// ProcessMatch generates the description, group info and avatar for a match
// and uploads all three. Matches with fewer than MinReferees assigned
// referees are skipped (nil result, no error).
func (p *Pipeline) ProcessMatch(m match.Match, isNew bool) (*Result, error) {
	action := "modified"
	if isNew {
		action = "new"
	}
	utils.Log.Infof("Processing %s match %s: %s, %s %s", action, m.ID, m.Label(), m.Date, m.KickoffTime)

	if len(m.Referees) < p.MinReferees {
		utils.Log.Infof("Match %s has fewer than %d referees, skipping asset generation", m.ID, p.MinReferees)
		return nil, nil
	}

	folder := FolderPath(p.FolderBase, m)
	res := &Result{MatchID: m.ID}

	description := GroupDescription(m, p.MatchFactsBase)
	descName := fmt.Sprintf("whatsapp_group_description_match_%s.txt", m.ID)
	url, err := p.Drive.Upload(descName, []byte(description), folder, "text/plain")
	if err != nil {
		return nil, fmt.Errorf("description upload failed: %w", err)
	}
	res.DescriptionURL = url

	info := GroupInfo(m)
	infoName := fmt.Sprintf("whatsapp_group_info_match_%s.txt", m.ID)
	url, err = p.Drive.Upload(infoName, []byte(info), folder, "text/plain")
	if err != nil {
		return nil, fmt.Errorf("group info upload failed: %w", err)
	}
	res.GroupInfoURL = url

	avatar, err := p.Avatars.CreateAvatar(m)
	if err != nil {
		return nil, fmt.Errorf("avatar creation failed: %w", err)
	}
	avatarName := fmt.Sprintf("whatsapp_group_avatar_match_%s.png", m.ID)
	url, err = p.Drive.Upload(avatarName, avatar, folder, "image/png")
	if err != nil {
		return nil, fmt.Errorf("avatar upload failed: %w", err)
	}
	res.AvatarURL = url

	return res, nil
}
