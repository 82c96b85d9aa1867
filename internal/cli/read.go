package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/invitations/internal/invite"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one invitation or request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withService(cmd, rootOpts, func(ctx context.Context, s *service, out *OutputFormatter) error {
				rec, err := s.engine.GetInvitationByID(ctx, id)
				if err != nil {
					return out.Fail("get failed", err)
				}
				return out.Records([]invite.Record{rec})
			})
		},
	}
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		filter   filterFlags
		requests bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Query invitations and requests",
		Long: `Query records with the filter flags.

Unless --accepted says otherwise only pending records are listed.
--requests restricts the query to requests in any sent state.

Examples:
  invitations list --user 3
  invitations list --component groups --accepted all --sort DESC
  invitations list --requests --item 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, rootOpts, func(ctx context.Context, s *service, out *OutputFormatter) error {
				get := s.engine.GetInvitations
				if requests {
					get = s.engine.GetRequests
				}
				recs, err := get(ctx, filter.filter())
				if err != nil {
					return out.Fail("list failed", err)
				}
				return out.Records(recs)
			})
		},
	}

	filter.bind(cmd)
	cmd.Flags().BoolVar(&requests, "requests", false, "list requests only")

	return cmd
}

// NewUserCommand creates the user command.
func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		filter   filterFlags
		requests bool
	)

	cmd := &cobra.Command{
		Use:   "user <user-id|email>",
		Short: "Show the invitations addressed to a user",
		Long: `Show the invitations addressed to a user or e-mail address.

By default only sent, pending invitations are shown. --requests shows the
requests the user made instead.

Examples:
  invitations user 3
  invitations user guest@example.com --sent all
  invitations user 3 --requests`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, rootOpts, func(ctx context.Context, s *service, out *OutputFormatter) error {
				identity, err := parseIdentity(args[0])
				if err != nil {
					return err
				}
				var recs []invite.Record
				if requests {
					recs, err = s.engine.UserRequests(ctx, identity.UserID, filter.filter())
				} else {
					recs, err = s.engine.UserInvitations(ctx, identity, filter.filter())
				}
				if err != nil {
					return out.Fail("user query failed", err)
				}
				return out.Records(recs)
			})
		},
	}

	filter.bind(cmd)
	cmd.Flags().BoolVar(&requests, "requests", false, "show the user's requests")

	return cmd
}

// NewFromCommand creates the from command.
func NewFromCommand(rootOpts *RootOptions) *cobra.Command {
	var filter filterFlags

	cmd := &cobra.Command{
		Use:   "from <inviter-id>",
		Short: "Show the invitations a user has extended",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inviter, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withService(cmd, rootOpts, func(ctx context.Context, s *service, out *OutputFormatter) error {
				recs, err := s.engine.InvitationsFromUser(ctx, inviter, filter.filter())
				if err != nil {
					return out.Fail("from query failed", err)
				}
				return out.Records(recs)
			})
		},
	}

	filter.bind(cmd)

	return cmd
}

// NewComponentsCommand creates the components command.
func NewComponentsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "components",
		Short: "List the active components that handle invitations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, rootOpts, func(ctx context.Context, s *service, out *OutputFormatter) error {
				names := s.engine.RegisteredComponents(ctx)
				if out.Format == "json" {
					return out.Success(names)
				}
				if len(names) == 0 {
					return out.Success("No components.")
				}
				return out.Success(strings.Join(names, "\n"))
			})
		},
	}
}

// parseIdentity accepts a positive user id or an e-mail address.
func parseIdentity(s string) (invite.Identity, error) {
	if strings.Contains(s, "@") {
		return invite.EmailIdentity(s), nil
	}
	id, err := parseID(s)
	if err != nil {
		return invite.Identity{}, err
	}
	return invite.UserIdentity(id), nil
}
