package main

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/dashboard"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/domain"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/geolocation"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/handler"
	"github.com/sakhrdev1-ctrl/Mangsales/internal/service"
)

func main() {
	root := &cobra.Command{
		Use:           "salestrack",
		Short:         "Sales visit tracker CLI",
		Long:          "Record client visits and manage the sales team.\n\nSALESTRACK_API sets the API endpoint (default http://localhost:8080/api).",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		loginCmd(),
		logoutCmd(),
		whoamiCmd(),
		visitCmd(),
		clientsCmd(),
		dashboardCmd(),
		exportCmd(),
		usersCmd(),
		languageCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
}

func loginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and cache the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp handler.LoginResponse
			err := newAPIClient().do(http.MethodPost, "/auth/login", handler.LoginRequest{
				Username: username,
				Password: password,
			}, &resp)
			if err != nil {
				return err
			}
			if err := saveToken(resp.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}
			fmt.Printf("✓ Logged in as: %s (%s)\n", resp.User.Name, resp.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			// the local token goes even when the server session already ended
			err := newAPIClient().do(http.MethodPost, "/auth/logout", nil, nil)
			os.Remove(tokenFile())
			if err != nil {
				fmt.Fprintf(os.Stderr, "server logout: %v\n", err)
			}
			fmt.Println("✓ Logged out")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			var me handler.SessionResponse
			if err := newAPIClient().do(http.MethodGet, "/auth/me", nil, &me); err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "ID\t%d\n", me.User.ID)
			fmt.Fprintf(w, "USERNAME\t%s\n", me.User.Username)
			fmt.Fprintf(w, "NAME\t%s\n", me.User.Name)
			fmt.Fprintf(w, "ROLE\t%s\n", me.User.Role)
			fmt.Fprintf(w, "HOME\t%s\n", me.Landing)
			fmt.Fprintf(w, "LANGUAGE\t%s (%s)\n", me.Language, me.Direction)
			return w.Flush()
		},
	}
}

func visitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visit",
		Short: "Visit reports",
	}

	var req handler.CreateVisitRequest
	var purposes []string
	var lat, lon float64
	add := &cobra.Command{
		Use:   "add",
		Short: "Record a client visit",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range purposes {
				req.VisitPurposes = append(req.VisitPurposes, domain.VisitPurpose(strings.TrimSpace(p)))
			}
			if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon") {
				req.Location = &geolocation.Reading{Latitude: &lat, Longitude: &lon}
			}

			var resp handler.CreateVisitResponse
			if err := newAPIClient().do(http.MethodPost, "/visits", req, &resp); err != nil {
				return err
			}
			fmt.Printf("✓ %s\n", resp.Message)
			fmt.Printf("  id: %s  client: %s (%s)\n", resp.Visit.ID, resp.Visit.ClientName, resp.Visit.ClientType)
			if resp.LocationStatus != "" {
				fmt.Printf("  location: %s\n", resp.LocationStatus)
			}
			return nil
		},
	}
	f := add.Flags()
	f.StringVar(&req.VisitDate, "date", "", "visit date YYYY-MM-DD (default today)")
	f.StringVar(&req.ClientName, "client", "", "client name")
	f.StringVar(&req.EmployeeName, "employee", "", "client employee met")
	f.StringVar(&req.EmployeePhone, "phone", "", "employee phone")
	f.StringVar(&req.CompanyEmail, "email", "", "company email")
	f.StringSliceVar(&purposes, "purpose", nil, "visit purpose (repeatable): "+joinPurposes())
	f.StringVar(&req.Notes, "notes", "", "free-text notes")
	f.Float64Var(&lat, "lat", 0, "client latitude")
	f.Float64Var(&lon, "lon", 0, "client longitude")
	_ = add.MarkFlagRequired("client")
	_ = add.MarkFlagRequired("employee")
	_ = add.MarkFlagRequired("purpose")

	cmd.AddCommand(add)
	return cmd
}

func clientsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clients",
		Short: "List known clients with their latest contact",
		RunE: func(cmd *cobra.Command, args []string) error {
			var clients []service.ClientContact
			if err := newAPIClient().do(http.MethodGet, "/clients", nil, &clients); err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CLIENT\tEMPLOYEE\tPHONE\tEMAIL\tLAST VISIT")
			for _, c := range clients {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.ClientName, c.EmployeeName, c.EmployeePhone, c.CompanyEmail, c.LastVisitDate)
			}
			return w.Flush()
		},
	}
}

type filterFlags struct {
	rep    int64
	start  string
	end    string
	search string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.rep, "rep", 0, "only visits by this rep id")
	cmd.Flags().StringVar(&f.start, "start", "", "first day YYYY-MM-DD")
	cmd.Flags().StringVar(&f.end, "end", "", "last day YYYY-MM-DD")
	cmd.Flags().StringVarP(&f.search, "query", "q", "", "free-text search over the rows")
}

func (f *filterFlags) query() string {
	q := url.Values{}
	if f.rep > 0 {
		q.Set("repId", strconv.FormatInt(f.rep, 10))
	}
	if f.start != "" {
		q.Set("start", f.start)
	}
	if f.end != "" {
		q.Set("end", f.end)
	}
	if f.search != "" {
		q.Set("q", f.search)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func dashboardCmd() *cobra.Command {
	var filter filterFlags
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the visit report (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var report dashboard.Report
			if err := newAPIClient().do(http.MethodGet, "/dashboard"+filter.query(), nil, &report); err != nil {
				return err
			}

			fmt.Printf("Total visits: %d   New clients: %d\n\n", report.TotalVisits, report.NewClients)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "REP\tTOTAL\tNEW\tOLD")
			for _, r := range report.Reps {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", r.Name, r.Total, r.New, r.Old)
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "PURPOSE\tCOUNT")
			for _, p := range report.Purposes {
				fmt.Fprintf(w, "%s\t%d\n", p.Label, p.Count)
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "DATE\tREP\tCLIENT\tTYPE\tEMPLOYEE\tPURPOSES")
			for _, v := range report.Rows {
				purposes := make([]string, len(v.VisitPurposes))
				for i, p := range v.VisitPurposes {
					purposes[i] = string(p)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", v.VisitDate, v.RepName, v.ClientName, v.ClientType, v.EmployeeName, strings.Join(purposes, ","))
			}
			return w.Flush()
		},
	}
	filter.register(cmd)
	return cmd
}

func exportCmd() *cobra.Command {
	var filter filterFlags
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the filtered visits as a spreadsheet (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := newAPIClient().download("/dashboard/export"+filter.query(), file); err != nil {
				file.Close()
				os.Remove(out)
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			fmt.Printf("✓ Exported to %s\n", out)
			return nil
		},
	}
	filter.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "visits.xlsx", "output file")
	return cmd
}

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts (admin)",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			var users []domain.User
			if err := newAPIClient().do(http.MethodGet, "/users", nil, &users); err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tROLE")
			for _, u := range users {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.Name, u.Role)
			}
			return w.Flush()
		},
	}

	var create handler.CreateUserRequest
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			var user domain.User
			if err := newAPIClient().do(http.MethodPost, "/users", create, &user); err != nil {
				return err
			}
			fmt.Printf("✓ User added: %s (id %d)\n", user.Username, user.ID)
			return nil
		},
	}
	add.Flags().StringVar(&create.Username, "username", "", "login name")
	add.Flags().StringVar(&create.Name, "name", "", "display name")
	add.Flags().StringVar(&create.Role, "role", string(domain.RoleRep), "admin or rep")
	add.Flags().StringVar(&create.Password, "password", "", "password")
	add.Flags().StringVar(&create.ConfirmPassword, "confirm-password", "", "password again")
	_ = add.MarkFlagRequired("username")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("password")
	_ = add.MarkFlagRequired("confirm-password")

	var username, name, role, password string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a user; omitted flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch handler.UpdateUserRequest
			if cmd.Flags().Changed("username") {
				patch.Username = &username
			}
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("role") {
				patch.Role = &role
			}
			if cmd.Flags().Changed("password") {
				patch.Password = &password
			}
			var user domain.User
			if err := newAPIClient().do(http.MethodPatch, "/users/"+args[0], patch, &user); err != nil {
				return err
			}
			fmt.Printf("✓ User updated: %s\n", user.Username)
			return nil
		},
	}
	update.Flags().StringVar(&username, "username", "", "login name")
	update.Flags().StringVar(&name, "name", "", "display name")
	update.Flags().StringVar(&role, "role", "", "admin or rep")
	update.Flags().StringVar(&password, "password", "", "new password (empty keeps the current one)")

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user and all their visits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newAPIClient().do(http.MethodDelete, "/users/"+args[0], nil, nil); err != nil {
				return err
			}
			fmt.Printf("✓ User %s deleted\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, add, update, remove)
	return cmd
}

func languageCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "language [en|ar]",
		Short:     "Show or switch the interface language",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"en", "ar"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp handler.LanguageResponse
			client := newAPIClient()
			var err error
			if len(args) == 0 {
				err = client.do(http.MethodGet, "/language", nil, &resp)
			} else {
				err = client.do(http.MethodPut, "/language", handler.LanguageRequest{Language: args[0]}, &resp)
			}
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s)\n", resp.Language, resp.Direction)
			return nil
		},
	}
}

func joinPurposes() string {
	names := make([]string, len(domain.VisitPurposes))
	for i, p := range domain.VisitPurposes {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}
