package xmltree_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creditlens/internal/xmltree"
)

func mustParse(t *testing.T, doc string) *xmltree.Node {
	t.Helper()
	n, err := xmltree.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return n
}

func TestParse_KeyedByRoot(t *testing.T) {
	n := mustParse(t, `<Root><A>1</A></Root>`)

	assert.Equal(t, xmltree.KindObject, n.Kind())
	assert.Equal(t, []string{"Root"}, n.Keys())
	assert.Equal(t, "1", n.Child("Root").Child("A").Text())
}

func TestParse_SingleChildIsNotWrapped(t *testing.T) {
	n := mustParse(t, `<Root><Item><V>x</V></Item></Root>`)

	item := n.Child("Root").Child("Item")
	require.NotNil(t, item)
	assert.Equal(t, xmltree.KindObject, item.Kind())
}

func TestParse_RepeatedSiblingsBecomeSequence(t *testing.T) {
	n := mustParse(t, `<Root><Item>a</Item><Other/><Item>b</Item><Item>c</Item></Root>`)

	root := n.Child("Root")
	assert.Equal(t, []string{"Item", "Other"}, root.Keys())

	items := root.Child("Item")
	require.Equal(t, xmltree.KindSequence, items.Kind())
	require.Equal(t, 3, items.Len())
	got := make([]string, 0, 3)
	for _, it := range items.Items() {
		got = append(got, it.Text())
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestParse_AttributesMergeIntoElement(t *testing.T) {
	n := mustParse(t, `<Root><Acc id="7" type="10"><Bal>500</Bal></Acc></Root>`)

	acc := n.Child("Root").Child("Acc")
	assert.Equal(t, []string{"id", "type", "Bal"}, acc.Keys())
	assert.Equal(t, "7", acc.Child("id").Text())
	assert.Equal(t, "10", acc.Child("type").Text())
	assert.Equal(t, "500", acc.Child("Bal").Text())
}

func TestParse_TextWithAttributesUsesTextKey(t *testing.T) {
	n := mustParse(t, `<Root><Amt currency="INR">1200</Amt></Root>`)

	amt := n.Child("Root").Child("Amt")
	assert.Equal(t, xmltree.KindObject, amt.Kind())
	assert.Equal(t, "INR", amt.Child("currency").Text())
	assert.Equal(t, "1200", amt.Child(xmltree.TextKey).Text())
}

func TestParse_EmptyElementIsEmptyLeaf(t *testing.T) {
	n := mustParse(t, `<Root><A/><B>   </B></Root>`)

	root := n.Child("Root")
	assert.Equal(t, xmltree.KindLeaf, root.Child("A").Kind())
	assert.True(t, root.Child("A").IsEmpty())
	assert.True(t, root.Child("B").IsEmpty())
}

func TestParse_TextKeptVerbatim(t *testing.T) {
	n := mustParse(t, `<Root><Name>  HDFC BANK </Name></Root>`)

	assert.Equal(t, "  HDFC BANK ", n.Child("Root").Child("Name").Text())
}

func TestParse_AttributeAndChildCollisionIsAmbiguous(t *testing.T) {
	n := mustParse(t, `<Root><Acc Status="11"><Status>13</Status><Status>14</Status></Acc></Root>`)

	status := n.Child("Root").Child("Acc").Child("Status")
	require.NotNil(t, status)
	assert.Equal(t, xmltree.KindAmbiguous, status.Kind())
	assert.True(t, status.IsEmpty())
}

func TestParse_TextKeyCollisionIsAmbiguous(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"child element", `<Root><Acc>balance<_>child</_></Acc></Root>`},
		{"attribute", `<Root><Acc _="attr">balance</Acc></Root>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := mustParse(t, tt.doc).Child("Root").Child("Acc")
			require.NotNil(t, acc)

			text := acc.Child(xmltree.TextKey)
			require.NotNil(t, text)
			assert.Equal(t, xmltree.KindAmbiguous, text.Kind())
			assert.Nil(t, xmltree.Scalar(acc, xmltree.TextKey))
			assert.Nil(t, xmltree.ParsePath("").Scalar(acc))
		})
	}
}

func TestParse_UnderscoreChildWithoutTextIsKept(t *testing.T) {
	acc := mustParse(t, `<Root><Acc><_>child</_></Acc></Root>`).Child("Root").Child("Acc")

	assert.Equal(t, "child", acc.Child(xmltree.TextKey).Text())
}

func TestParse_NamespacesDropped(t *testing.T) {
	n := mustParse(t, `<ns:Root xmlns:ns="urn:x" xmlns="urn:y"><ns:A>1</ns:A></ns:Root>`)

	root := n.Child("Root")
	require.NotNil(t, root)
	assert.Equal(t, []string{"A"}, root.Keys())
}

func TestParse_Latin1Charset(t *testing.T) {
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><Root><City>M\xfcnchen</City></Root>"
	n := mustParse(t, doc)

	assert.Equal(t, "München", n.Child("Root").Child("City").Text())
}

func TestParse_Malformed(t *testing.T) {
	_, err := xmltree.Parse(strings.NewReader(`<Root><A>1</Root>`))
	assert.Error(t, err)

	_, err = xmltree.Parse(strings.NewReader(`<Root><A>1</A>`))
	assert.Error(t, err)
}

func TestParse_NoRoot(t *testing.T) {
	_, err := xmltree.Parse(strings.NewReader(`<?xml version="1.0"?>`))
	assert.True(t, errors.Is(err, xmltree.ErrNoRoot))

	_, err = xmltree.Parse(strings.NewReader(``))
	assert.True(t, errors.Is(err, xmltree.ErrNoRoot))
}

func TestParse_MultipleRoots(t *testing.T) {
	_, err := xmltree.ParseBytes([]byte(`<A/><B/>`))
	assert.True(t, errors.Is(err, xmltree.ErrMultipleRoots))
}
