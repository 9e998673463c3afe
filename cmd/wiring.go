package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/matchscope/matchscope/pkg/assets"
	"github.com/matchscope/matchscope/pkg/detect"
	"github.com/matchscope/matchscope/pkg/notify"
	"github.com/matchscope/matchscope/pkg/processor"
	"github.com/matchscope/matchscope/pkg/snapshot"
	"github.com/matchscope/matchscope/pkg/storage"
	"github.com/matchscope/matchscope/pkg/upstream"
)

const (
	snapshotFileName = "matches_snapshot.json"
	dbFileName       = "matchscope.sqlite"
)

func dataDir() string {
	dir := viper.GetString("data.dir")
	if dir == "" {
		dir = "."
	}
	return dir
}

func snapshotPath() string { return filepath.Join(dataDir(), snapshotFileName) }

func dbPath() string { return filepath.Join(dataDir(), dbFileName) }

// buildProcessor wires the full cycle from the viper config. Optional stages
// stay disabled when their config keys are empty. The returned cleanup closes
// whatever got opened.
func buildProcessor() (*processor.Processor, *storage.DB, func(), error) {
	upstreamURL := viper.GetString("upstream.url")
	if upstreamURL == "" {
		return nil, nil, nil, fmt.Errorf("upstream.url is not configured (set it in the config file or with UPSTREAM_URL)")
	}

	source := upstream.NewClient(upstreamURL)
	store := snapshot.NewStore(snapshotPath())
	detector := detect.NewDetector()

	var opts []processor.Option
	var closers []func()
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	if avatarURL, driveURL := viper.GetString("avatar.url"), viper.GetString("drive.url"); avatarURL != "" && driveURL != "" {
		opts = append(opts, processor.WithAssets(&assets.Pipeline{
			Avatars:        assets.NewAvatarClient(avatarURL),
			Drive:          assets.NewDriveClient(driveURL),
			FolderBase:     viper.GetString("assets.folder_base"),
			MatchFactsBase: viper.GetString("assets.match_facts_base"),
			MinReferees:    viper.GetInt("assets.min_referees"),
		}))
	}

	var channels []notify.Channel
	if token, channelID := viper.GetString("discord.token"), viper.GetString("discord.channel"); token != "" && channelID != "" {
		discord, err := notify.NewDiscordChannel(token, channelID, nil)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		closers = append(closers, func() { _ = discord.Close() })
		channels = append(channels, discord)
	}
	if webhookURL := viper.GetString("webhook.url"); webhookURL != "" {
		channels = append(channels, notify.NewWebhookChannel(webhookURL, nil))
	}
	if len(channels) > 0 {
		opts = append(opts, processor.WithNotifier(notify.NewDispatcher(channels...)))
	}

	db, err := storage.Open(dbPath())
	if err != nil {
		cleanup()
		return nil, nil, nil, fmt.Errorf("failed to open change log: %w", err)
	}
	closers = append(closers, func() { _ = db.Close() })
	opts = append(opts, processor.WithChangeLog(db))

	if phonebookURL := viper.GetString("phonebook.url"); phonebookURL != "" {
		opts = append(opts, processor.WithPhonebook(notify.NewPhonebookClient(phonebookURL)))
	}

	return processor.New(source, store, detector, opts...), db, cleanup, nil
}

// dependencyURLs collects the configured collaborator base URLs for the
// dependency health probe.
func dependencyURLs() map[string]string {
	deps := map[string]string{}
	for name, key := range map[string]string{
		"upstream":  "upstream.url",
		"avatar":    "avatar.url",
		"drive":     "drive.url",
		"phonebook": "phonebook.url",
	} {
		if url := viper.GetString(key); url != "" {
			deps[name] = url
		}
	}
	return deps
}
