package portal

import (
	"context"
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/wethinkt/go-pikeru/internal/tuilog"
)

// D-Bus names the backend registers.
const (
	BusName            = "org.freedesktop.impl.portal.desktop.pikeru"
	ObjectPath         = dbus.ObjectPath("/org/freedesktop/portal/desktop")
	FileChooserIface   = "org.freedesktop.impl.portal.FileChooser"
	SearchIndexerIface = "org.freedesktop.impl.portal.SearchIndexer"
)

// ErrNameTaken is returned when another process owns BusName.
var ErrNameTaken = errors.New("portal bus name already taken")

const introspectXML = `<node>
	<interface name="` + FileChooserIface + `">
		<method name="OpenFile">
			<arg name="handle" type="o" direction="in"/>
			<arg name="app_id" type="s" direction="in"/>
			<arg name="parent_window" type="s" direction="in"/>
			<arg name="title" type="s" direction="in"/>
			<arg name="options" type="a{sv}" direction="in"/>
			<arg name="response" type="u" direction="out"/>
			<arg name="results" type="a{sv}" direction="out"/>
		</method>
		<method name="SaveFile">
			<arg name="handle" type="o" direction="in"/>
			<arg name="app_id" type="s" direction="in"/>
			<arg name="parent_window" type="s" direction="in"/>
			<arg name="title" type="s" direction="in"/>
			<arg name="options" type="a{sv}" direction="in"/>
			<arg name="response" type="u" direction="out"/>
			<arg name="results" type="a{sv}" direction="out"/>
		</method>
	</interface>
	<interface name="` + SearchIndexerIface + `">
		<method name="PauseResume">
			<arg name="active" type="b" direction="in"/>
		</method>
		<method name="Update">
			<arg name="dirs" type="as" direction="in"/>
		</method>
		<method name="Configure">
			<arg name="respect_gitignore" type="b" direction="in"/>
			<arg name="ignore" type="s" direction="in"/>
		</method>
	</interface>` + introspect.IntrospectDataString + `</node>`

// Service owns the session bus connection for the backend.
type Service struct {
	// Replace takes BusName over from a running backend.
	Replace bool

	conn    *dbus.Conn
	chooser *FileChooser
	indexer *SearchIndexer
}

// NewService returns a service exporting chooser and, when not nil,
// indexer.
func NewService(chooser *FileChooser, indexer *SearchIndexer) *Service {
	return &Service{chooser: chooser, indexer: indexer}
}

// Serve connects to the session bus, exports the interfaces, claims
// BusName and blocks until ctx is cancelled.
func (s *Service) Serve(ctx context.Context) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("connect session bus: %w", err)
	}
	s.conn = conn
	defer conn.Close()

	if err := conn.Export(s.chooser, ObjectPath, FileChooserIface); err != nil {
		return fmt.Errorf("export %s: %w", FileChooserIface, err)
	}
	if s.indexer != nil {
		if err := conn.Export(s.indexer, ObjectPath, SearchIndexerIface); err != nil {
			return fmt.Errorf("export %s: %w", SearchIndexerIface, err)
		}
	}
	if err := conn.Export(introspect.Introspectable(introspectXML), ObjectPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("export introspection: %w", err)
	}

	flags := dbus.NameFlagDoNotQueue | dbus.NameFlagAllowReplacement
	if s.Replace {
		flags |= dbus.NameFlagReplaceExisting
	}
	reply, err := conn.RequestName(BusName, flags)
	if err != nil {
		return fmt.Errorf("request name %s: %w", BusName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return ErrNameTaken
	}
	tuilog.Log.Info("Portal ready", "name", BusName, "path", ObjectPath)

	<-ctx.Done()
	return nil
}
