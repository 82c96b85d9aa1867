package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/invitations/internal/engine"
	"github.com/roach88/invitations/internal/invite"
)

// NewInviteCommand creates the invite command.
func NewInviteCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		key     keyFlags
		inviter int64
		content string
		send    bool
	)

	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Create an invitation",
		Long: `Create an invitation, optionally sending it right away.

If the invitee already asked to join (a pending request for the same key
exists), sending accepts both the invitation and the request.

Example:
  invitations invite --user 3 --inviter 1 --component groups --action join --item 7 --send
  invitations invite --email guest@example.com --inviter 1 --component groups --action join --item 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, rootOpts, func(ctx context.Context, s *service, out *OutputFormatter) error {
				rec, err := s.engine.AddInvitation(ctx, engine.InvitationArgs{
					UserID:          key.user,
					InviteeEmail:    key.email,
					InviterID:       inviter,
					ComponentName:   key.component,
					ComponentAction: key.action,
					ItemID:          key.item,
					SecondaryItemID: key.secondary,
					Content:         content,
					Send:            send,
				})
				if err != nil {
					return out.Fail("invite failed", err)
				}
				return out.Records([]invite.Record{rec})
			})
		},
	}

	key.bind(cmd, true)
	cmd.Flags().Int64Var(&inviter, "inviter", 0, "inviting user id (required)")
	cmd.Flags().StringVar(&content, "content", "", "message sent with the invitation")
	cmd.Flags().BoolVar(&send, "send", false, "send the invitation immediately")
	_ = cmd.MarkFlagRequired("inviter")

	return cmd
}

// NewRequestCommand creates the request command.
func NewRequestCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		key     keyFlags
		content string
	)

	cmd := &cobra.Command{
		Use:   "request",
		Short: "Create a membership request",
		Long: `Create a request by a user to join an item.

If a sent invitation for the same key is pending, the request is stored
accepted and the invitations are accepted with it.

Example:
  invitations request --user 3 --component groups --action join --item 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, rootOpts, func(ctx context.Context, s *service, out *OutputFormatter) error {
				rec, err := s.engine.AddRequest(ctx, engine.RequestArgs{
					UserID:          key.user,
					ComponentName:   key.component,
					ComponentAction: key.action,
					ItemID:          key.item,
					SecondaryItemID: key.secondary,
					Content:         content,
				})
				if err != nil {
					return out.Fail("request failed", err)
				}
				return out.Records([]invite.Record{rec})
			})
		},
	}

	key.bind(cmd, false)
	cmd.Flags().StringVar(&content, "content", "", "message sent with the request")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// NewSendCommand creates the send command.
func NewSendCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "send <id>",
		Short: "Send a draft invitation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withService(cmd, rootOpts, func(ctx context.Context, s *service, out *OutputFormatter) error {
				n, err := s.engine.SendInvitationByID(ctx, id)
				if err != nil {
					return out.Fail("send failed", err)
				}
				return out.Count("send", n)
			})
		},
	}
}

// NewAcceptCommand creates the accept command.
func NewAcceptCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		key     keyFlags
		request bool
	)

	cmd := &cobra.Command{
		Use:   "accept",
		Short: "Accept every pending invitation and request for a key",
		Long: `Accept every pending invitation and request for a key.

The key needs an invitee (--user or --email), --component, --action and
--item. --request accepts from the request side, which requires --user.

Example:
  invitations accept --user 3 --component groups --action join --item 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, rootOpts, func(ctx context.Context, s *service, out *OutputFormatter) error {
				accept := engine.AcceptArgs{
					UserID:          key.user,
					InviteeEmail:    key.email,
					ComponentName:   key.component,
					ComponentAction: key.action,
					ItemID:          key.item,
					SecondaryItemID: key.secondary,
				}
				op, fn := "accept_invitation", s.engine.AcceptInvitation
				if request {
					op, fn = "accept_request", s.engine.AcceptRequest
				}
				n, err := fn(ctx, accept)
				if err != nil {
					return out.Fail("accept failed", err)
				}
				return out.Count(op, n)
			})
		},
	}

	key.bind(cmd, true)
	cmd.Flags().BoolVar(&request, "request", false, "accept from the request side")

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		filter    filterFlags
		requests  bool
		purge     string
		purgeOnly string
	)

	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete invitations or requests",
		Long: `Delete one record by id, the records matching a filter, or every record
of a component.

Without an id the filter flags select pending invitations (or requests with
--requests). --purge-component deletes every record of a component in any
state, optionally limited to --purge-action.

Examples:
  invitations delete 12
  invitations delete --user 3 --component groups
  invitations delete --requests --user 3
  invitations delete --purge-component groups`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id int64
			if len(args) == 1 {
				var err error
				if id, err = parseID(args[0]); err != nil {
					return err
				}
			}
			return withService(cmd, rootOpts, func(ctx context.Context, s *service, out *OutputFormatter) error {
				var (
					n   int
					op  string
					err error
				)
				switch {
				case id != 0:
					op = "delete_invitation"
					n, err = s.engine.DeleteInvitationByID(ctx, id)
				case purge != "":
					op = "delete_all_by_component"
					n, err = s.engine.DeleteAllByComponent(ctx, purge, purgeOnly)
				case requests:
					op = "delete_requests"
					n, err = s.engine.DeleteRequests(ctx, filter.filter())
				default:
					op = "delete_invitations"
					n, err = s.engine.DeleteInvitations(ctx, filter.filter())
				}
				if err != nil {
					return out.Fail("delete failed", err)
				}
				return out.Count(op, n)
			})
		},
	}

	filter.bind(cmd)
	cmd.Flags().BoolVar(&requests, "requests", false, "delete requests instead of invitations")
	cmd.Flags().StringVar(&purge, "purge-component", "", "delete every record of this component")
	cmd.Flags().StringVar(&purgeOnly, "purge-action", "", "limit --purge-component to one action")

	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid id %q: must be a positive integer", s))
	}
	return id, nil
}
